// Package quad defines the three-address intermediate representation
// codegen consumes. A quad is a single flat instruction struct rather than
// the teacher's SSA Value/BasicBlock graph — there is no block structure
// here, only a linear list threaded with explicit jmp/jmpf/labl opcodes.
package quad

import (
	"fmt"

	"github.com/xplshn/pascbe/pkg/symtab"
)

// Op is the quad opcode. The "i"/"r" prefix distinguishes integer and
// real operand kinds the way the external opcode table does.
type Op int

const (
	OpILoad Op = iota
	OpRLoad
	OpIUMinus
	OpRUMinus
	OpINot
	OpIPlus
	OpIMinus
	OpIMult
	OpIDivide
	OpIMod
	OpRPlus
	OpRMinus
	OpRMult
	OpRDivide
	OpIAnd
	OpIOr
	OpIEq
	OpINe
	OpILt
	OpIGt
	OpREq
	OpRNe
	OpRLt
	OpRGt
	OpIAssign
	OpRAssign
	OpIStore
	OpRStore
	OpParam
	OpCall
	OpIReturn
	OpRReturn
	OpLIndex
	OpIRIndex
	OpRRIndex
	OpItoR
	OpJmp
	OpJmpF
	OpLabl
	OpNop
)

var opNames = map[Op]string{
	OpILoad: "iload", OpRLoad: "rload",
	OpIUMinus: "iuminus", OpRUMinus: "ruminus", OpINot: "inot",
	OpIPlus: "iplus", OpIMinus: "iminus", OpIMult: "imult",
	OpIDivide: "idivide", OpIMod: "imod",
	OpRPlus: "rplus", OpRMinus: "rminus", OpRMult: "rmult", OpRDivide: "rdivide",
	OpIAnd: "iand", OpIOr: "ior",
	OpIEq: "ieq", OpINe: "ine", OpILt: "ilt", OpIGt: "igt",
	OpREq: "req", OpRNe: "rne", OpRLt: "rlt", OpRGt: "rgt",
	OpIAssign: "iassign", OpRAssign: "rassign",
	OpIStore: "istore", OpRStore: "rstore",
	OpParam: "param", OpCall: "call",
	OpIReturn: "ireturn", OpRReturn: "rreturn",
	OpLIndex: "lindex", OpIRIndex: "irindex", OpRRIndex: "rrindex",
	OpItoR: "itor",
	OpJmp:   "jmp", OpJmpF: "jmpf", OpLabl: "labl", OpNop: "nop",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// IsComparison reports whether op is one of the eight comparison opcodes.
func (o Op) IsComparison() bool {
	switch o {
	case OpIEq, OpINe, OpILt, OpIGt, OpREq, OpRNe, OpRLt, OpRGt:
		return true
	default:
		return false
	}
}

// Quad is one three-address instruction. Which fields are meaningful
// depends on Op; unused symbol fields are symtab.Undef and unused int
// fields are 0.
type Quad struct {
	Op   Op
	Sym1 symtab.SymIndex
	Sym2 symtab.SymIndex
	Sym3 symtab.SymIndex
	Int1 int
	Int2 int
}

func (q Quad) String() string {
	return fmt.Sprintf("%s sym1=%d sym2=%d sym3=%d int1=%d int2=%d",
		q.Op, q.Sym1, q.Sym2, q.Sym3, q.Int1, q.Int2)
}

// List is an append-only sequence of quads, the unit codegen walks
// linearly for one procedure/function body.
type List struct {
	items []Quad
}

func (l *List) Append(q Quad) { l.items = append(l.items, q) }

func (l *List) Len() int { return len(l.items) }

func (l *List) At(i int) Quad { return l.items[i] }

func (l *List) All() []Quad { return l.items }

func (l *List) String() string {
	s := ""
	for i, q := range l.items {
		s += fmt.Sprintf("%4d: %s\n", i, q)
	}
	return s
}
