// Package codegen implements the quad-driven linear x86-64 Intel-syntax
// emitter: prologue/epilogue around the display-based activation record,
// variable/array access, x87 floating-point arithmetic, short-circuit
// boolean materialization, call linkage and control flow. The
// Context-threading idiom (counters plus a linear pass over a sink) follows
// the teacher's pkg/codegen.Context; the exact instruction sequences follow
// original_source/code/remaining/codegen.cc, with the two fixes spec.md §9
// calls for: store() uses a scratch register distinct from the value being
// stored, and real constants are materialized into a .data slot rather than
// passed to fld as a raw literal operand.
package codegen

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"

	"github.com/dustin/go-humanize"

	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/quad"
	"github.com/xplshn/pascbe/pkg/symtab"
)

// Reg is one of the three general-purpose registers this backend's fixed
// register convention uses.
type Reg int

const (
	RAX Reg = iota
	RCX
	RDX
)

var regName = map[Reg]string{RAX: "rax", RCX: "rcx", RDX: "rdx"}

type floatConst struct {
	Label string
	Value float64
}

// Context threads the symbol table, diagnostic sink, config and output
// stream through one code-generation run. One Context emits one compilation
// unit's worth of assembly: every procedure/function body plus a trailing
// .data section for interned float literals.
type Context struct {
	tab  *symtab.Table
	cfg  *config.Config
	sink *diag.Sink
	out  *Output

	floatPool  []floatConst
	floatIndex map[uint64]string
}

func NewContext(tab *symtab.Table, cfg *config.Config, sink *diag.Sink, out *Output) *Context {
	return &Context{
		tab:        tab,
		cfg:        cfg,
		sink:       sink,
		out:        out,
		floatIndex: make(map[uint64]string),
	}
}

// WriteHeader stamps a per-run build-unit identifier and generation
// timestamp at the top of the output, the way the teacher's cmd/gtest
// stamps each run's results with traceable bookkeeping.
func (c *Context) WriteHeader(sourceName string) {
	id := uuid.New()
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", time.Now())
	fmt.Fprintf(c.out, "# build-unit %s\n", id.String())
	fmt.Fprintf(c.out, "# generated %s from %s\n", ts, sourceName)
}

func (c *Context) instr(mnemonic, operands string) {
	fmt.Fprintf(c.out, "\t\t%s\t%s\n", mnemonic, operands)
}

func (c *Context) instr0(mnemonic string) {
	fmt.Fprintf(c.out, "\t\t%s\n", mnemonic)
}

func (c *Context) label(n int) {
	fmt.Fprintf(c.out, "L%d:\n", n)
}

func (c *Context) comment(format string, args ...interface{}) {
	fmt.Fprintf(c.out, "\t# %s\n", fmt.Sprintf(format, args...))
}

func signedOffset(offset int) string {
	if offset >= 0 {
		return fmt.Sprintf("+%d", offset)
	}
	return fmt.Sprintf("%d", offset)
}

// align rounds n up to the next 8-byte boundary (symtab.AlignedARSize does
// the same computation; kept as a thin wrapper so codegen reads with the
// reference's own vocabulary, "align(frame_size)").
func align(n int) int { return symtab.AlignedARSize(n) }

// GenerateAssembler emits one procedure/function's prologue, its quad-list
// body, and its epilogue, in that order — the reference's
// generate_assembler(quad_list*, symbol*).
func (c *Context) GenerateAssembler(q *quad.List, env symtab.SymIndex) {
	c.Prologue(env)
	c.Expand(q)
	c.Epilogue(env)
}

// Prologue emits the activation-record setup: push the old base pointer,
// snapshot the new frame pointer, copy the caller's display entries for
// every enclosing level, close the display with this frame's own pointer,
// and reserve aligned stack space for locals.
func (c *Context) Prologue(env symtab.SymIndex) {
	entry := c.tab.GetSymbol(env)
	arSize := align(entry.ARSize)

	fmt.Fprintf(c.out, "L%d:\t\t\t# %s\n", entry.LabelNr, entry.ID)

	if c.cfg.Trace {
		c.comment("PROLOGUE (%s, ar_size=%s)", entry.ID, humanize.Bytes(uint64(arSize)))
	}

	c.instr("push", "rbp")
	c.instr("mov", "rcx, rsp")
	for i := 1; i <= entry.Level; i++ {
		c.instr("push", fmt.Sprintf("[rbp%s]", signedOffset(-(i*symtab.StackWidth))))
	}
	c.instr("push", "rcx")
	c.instr("mov", "rbp, rcx")
	c.instr("sub", fmt.Sprintf("rsp, %d", arSize))
}

// Epilogue emits the fixed two-instruction frame teardown.
func (c *Context) Epilogue(env symtab.SymIndex) {
	if c.cfg.Trace {
		entry := c.tab.GetSymbol(env)
		c.comment("EPILOGUE (%s)", entry.ID)
	}
	c.instr0("leave")
	c.instr0("ret")
}

// find returns sym's lexical level and its byte offset relative to that
// level's frame pointer, per spec.md §4.3's exact two-branch formula.
func (c *Context) find(sym symtab.SymIndex) (level, offset int) {
	e := c.tab.GetSymbol(sym)
	level = e.Level
	switch e.Kind {
	case symtab.KindVar, symtab.KindArray:
		offset = -(symtab.StackWidth + level*symtab.StackWidth + e.Offset)
	default: // Param
		offset = symtab.StackWidth + e.Offset + symtab.StackWidth
	}
	return
}

// frameAddress loads the saved base pointer for nesting level lev out of
// the current frame's display into dest.
func (c *Context) frameAddress(level int, dest Reg) {
	c.instr("mov", fmt.Sprintf("%s, [rbp%s]", regName[dest], signedOffset(-(symtab.StackWidth*level))))
}

// fetch loads sym's value into dest: an immediate move for a Const, or a
// frame-address-then-load for a Var/Param.
func (c *Context) fetch(sym symtab.SymIndex, dest Reg) {
	e := c.tab.GetSymbol(sym)
	if e.Kind == symtab.KindConst {
		c.instr("mov", fmt.Sprintf("%s, %d", regName[dest], e.Const.IVal))
		return
	}
	level, offset := c.find(sym)
	c.frameAddress(level, dest)
	c.instr("mov", fmt.Sprintf("%s, [%s%s]", regName[dest], regName[dest], signedOffset(offset)))
}

// fetchFloat loads sym's value onto the x87 stack: a real Const is loaded
// from its interned .data slot (see internFloat); a Var/Param is loaded
// from its frame address, computed into the RCX scratch register.
func (c *Context) fetchFloat(sym symtab.SymIndex) {
	e := c.tab.GetSymbol(sym)
	if e.Kind == symtab.KindConst {
		label := c.internFloat(e.Const.RVal)
		c.instr("fld", fmt.Sprintf("qword ptr [%s]", label))
		return
	}
	level, offset := c.find(sym)
	c.frameAddress(level, RCX)
	c.instr("fld", fmt.Sprintf("qword ptr [%s%s]", regName[RCX], signedOffset(offset)))
}

// store writes src into sym's slot. The frame address is computed into a
// scratch register distinct from src, so src's value survives the address
// computation — the reference computes the address into src itself,
// clobbering the value it is about to store; spec.md §9 flags this as a
// bug this port does not carry over.
func (c *Context) store(src Reg, sym symtab.SymIndex) {
	scratch := RCX
	if src == RCX {
		scratch = RAX
	}
	level, offset := c.find(sym)
	c.frameAddress(level, scratch)
	c.instr("mov", fmt.Sprintf("[%s%s], %s", regName[scratch], signedOffset(offset), regName[src]))
}

// storeFloat pops the x87 top-of-stack into sym's slot.
func (c *Context) storeFloat(sym symtab.SymIndex) {
	level, offset := c.find(sym)
	c.frameAddress(level, RCX)
	c.instr("fstp", fmt.Sprintf("qword ptr [%s%s]", regName[RCX], signedOffset(offset)))
}

// arrayAddress computes sym's base address (its frame pointer plus its own
// variable offset — the array's first element) into dest.
func (c *Context) arrayAddress(sym symtab.SymIndex, dest Reg) {
	level, offset := c.find(sym)
	c.frameAddress(level, dest)
	if offset >= 0 {
		c.instr("add", fmt.Sprintf("%s, %d", regName[dest], offset))
	} else {
		c.instr("sub", fmt.Sprintf("%s, %d", regName[dest], -offset))
	}
}

// internFloat returns the .data label backing v, allocating a fresh one the
// first time v (by exact bit pattern) is seen.
func (c *Context) internFloat(v float64) string {
	bits := math.Float64bits(v)
	if label, ok := c.floatIndex[bits]; ok {
		return label
	}
	label := fmt.Sprintf("Lf%d", len(c.floatPool))
	c.floatPool = append(c.floatPool, floatConst{Label: label, Value: v})
	c.floatIndex[bits] = label
	return label
}

// EmitDataSection writes the .data section holding every real literal
// fetchFloat interned during this run. Call once, after every
// procedure/function body has been generated.
func (c *Context) EmitDataSection() {
	if len(c.floatPool) == 0 {
		return
	}
	fmt.Fprintln(c.out, "section .data")
	for _, fc := range c.floatPool {
		fmt.Fprintf(c.out, "%s:\t\tdq\t%v\n", fc.Label, fc.Value)
	}
}
