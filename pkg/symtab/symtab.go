// Package symtab implements the arena-based symbol table: a flat slice of
// entries addressed by opaque SymIndex handles, a name-interning pool, and
// the monotonic label counter codegen draws fresh labels from.
package symtab

import (
	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/slices"
)

// SymIndex is an opaque handle into the table's entry arena. The zero value
// is never a valid handle; index 0 is reserved.
type SymIndex int

// Undef is returned by lookups that fail to find a binding.
const Undef SymIndex = 0

// Kind discriminates what an entry represents.
type Kind int

const (
	KindUndef Kind = iota
	KindVar
	KindConst
	KindParam
	KindArray
	KindProc
	KindFunc
	KindNameType
)

func (k Kind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	case KindParam:
		return "param"
	case KindArray:
		return "array"
	case KindProc:
		return "proc"
	case KindFunc:
		return "func"
	case KindNameType:
		return "nametype"
	default:
		return "undef"
	}
}

// ConstValue holds a Const entry's literal payload. Which field is valid is
// determined by the entry's Type (IntegerType or RealType).
type ConstValue struct {
	IVal int64
	RVal float64
}

// Entry is one symbol-table row. Non-NameType entries must have Type set to
// a NameType entry's SymIndex.
type Entry struct {
	Kind  Kind
	ID    string // name, stored as given (not passed through the pool)
	Level int    // lexical nesting depth, 0 = program scope
	Offset int   // byte offset within the owning activation record

	Type SymIndex

	Const ConstValue // valid iff Kind == KindConst

	ElemType SymIndex // valid iff Kind == KindArray
	Card     int      // cardinality, valid iff Kind == KindArray

	PrevParam SymIndex // valid iff Kind == KindParam: previous param, reversed chain

	ARSize   int      // valid iff Kind == KindProc/KindFunc, pre-alignment
	LabelNr  int      // valid iff Kind == KindProc/KindFunc
	LastParam SymIndex // valid iff Kind == KindProc/KindFunc: tail of reversed param chain
	RetType  SymIndex // valid iff Kind == KindFunc
}

// Table is the symbol table arena. The zero value is not usable; use New.
type Table struct {
	entries []Entry
	pool    map[uint64]string
	label   int

	// env is the symbol currently being compiled (the enclosing Proc/Func,
	// or 0 at program scope). Codegen and semantic both read it through
	// CurrentEnvironment/SetCurrentEnvironment.
	env SymIndex

	IntegerType SymIndex
	RealType    SymIndex
	VoidType    SymIndex
}

// New allocates a table pre-seeded with the three built-in NameType entries.
func New() *Table {
	t := &Table{
		entries: make([]Entry, 1, 64), // index 0 reserved for Undef
		pool:    make(map[uint64]string),
	}
	t.IntegerType = t.declareNameType("integer")
	t.RealType = t.declareNameType("real")
	t.VoidType = t.declareNameType("void")
	return t
}

func (t *Table) declareNameType(name string) SymIndex {
	idx := SymIndex(len(t.entries))
	t.entries = append(t.entries, Entry{Kind: KindNameType, ID: name})
	return idx
}

// PoolLookup interns name and returns a stable 64-bit key for it; repeated
// calls with an equal string return the same key. This mirrors the
// reference's pool_lookup(NameId) -> string, inverted: the hash is the
// handle, the string is recovered by LookupInterned.
func (t *Table) PoolLookup(name string) uint64 {
	h := xxhash.Sum64String(name)
	if _, ok := t.pool[h]; !ok {
		t.pool[h] = name
	}
	return h
}

// LookupInterned recovers a previously interned string from its pool key.
func (t *Table) LookupInterned(h uint64) (string, bool) {
	s, ok := t.pool[h]
	return s, ok
}

// GetSymbol returns the entry for idx. Calling with Undef or an
// out-of-range handle is a programmer error and panics, matching the
// reference's assumption that every SymIndex flowing through the pipeline
// was produced by this table.
func (t *Table) GetSymbol(idx SymIndex) *Entry {
	if idx <= Undef || int(idx) >= len(t.entries) {
		panic("symtab: GetSymbol on invalid SymIndex")
	}
	return &t.entries[idx]
}

// NewEntry allocates a fresh entry and returns its handle.
func (t *Table) NewEntry(e Entry) SymIndex {
	idx := SymIndex(len(t.entries))
	t.entries = append(t.entries, e)
	return idx
}

// GetNextLabel returns a fresh, globally unique label number.
func (t *Table) GetNextLabel() int {
	t.label++
	return t.label
}

// CurrentEnvironment returns the SymIndex of the Proc/Func currently being
// compiled, or Undef at program scope.
func (t *Table) CurrentEnvironment() SymIndex {
	return t.env
}

// SetCurrentEnvironment updates the current environment; callers restore
// the previous value on scope exit.
func (t *Table) SetCurrentEnvironment(idx SymIndex) {
	t.env = idx
}

// IsNumeric reports whether idx names IntegerType or RealType.
func (t *Table) IsNumeric(idx SymIndex) bool {
	return idx == t.IntegerType || idx == t.RealType
}

// Params returns a Proc/Func's parameters in declaration order, walking the
// reversed PrevParam chain and reversing it back.
func (t *Table) Params(procOrFunc SymIndex) []SymIndex {
	e := t.GetSymbol(procOrFunc)
	var rev []SymIndex
	for p := e.LastParam; p != Undef; {
		rev = append(rev, p)
		p = t.GetSymbol(p).PrevParam
	}
	slices.Reverse(rev)
	return rev
}

// AlignedARSize rounds n up to the next multiple of 8, matching the
// reference's align(frame_size) = ((n+7)/8)*8.
func AlignedARSize(n int) int {
	return ((n + 7) / 8) * 8
}

// StackWidth is the size in bytes of every activation-record slot.
const StackWidth = 8
