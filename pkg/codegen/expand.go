package codegen

import (
	"fmt"

	"github.com/xplshn/pascbe/pkg/quad"
	"github.com/xplshn/pascbe/pkg/symtab"
)

// Expand walks q linearly, quad by quad, emitting the instruction sequence
// each opcode names. Labels are emitted unconditionally (even with tracing
// off) so a branch target is never missed; a nop reaching this point is a
// fatal generator error per spec.md §4.3.
func (c *Context) Expand(q *quad.List) {
	for i := 0; i < q.Len(); i++ {
		quadNr := i + 1
		cur := q.At(i)

		if cur.Op == quad.OpLabl {
			c.label(cur.Int1)
		}

		if c.cfg.Trace {
			c.comment("QUAD %d: %s", quadNr, cur)
		}

		c.expandOne(cur)
	}

	c.out.w.Flush()
}

func (c *Context) expandOne(q quad.Quad) {
	switch q.Op {
	case quad.OpILoad:
		c.instr("mov", fmt.Sprintf("rax, %d", q.Int1))
		c.store(RAX, q.Sym3)

	case quad.OpRLoad:
		// The reference reuses the integer load path here (mov rax, int1)
		// even for a real constant; a quad's int slots cannot carry a
		// float64, so this port routes rload through sym1 (a real Const
		// entry) and the established float fetch/store path instead.
		c.fetchFloat(q.Sym1)
		c.storeFloat(q.Sym3)

	case quad.OpINot:
		lEq, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
		c.fetch(q.Sym1, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("je", fmt.Sprintf("L%d", lEq))
		c.instr("mov", "rax, 0")
		c.instr("jmp", fmt.Sprintf("L%d", lDone))
		c.label(lEq)
		c.instr("mov", "rax, 1")
		c.label(lDone)
		c.store(RAX, q.Sym3)

	case quad.OpRUMinus:
		c.fetchFloat(q.Sym1)
		c.instr0("fchs")
		c.storeFloat(q.Sym3)

	case quad.OpIUMinus:
		c.fetch(q.Sym1, RAX)
		c.instr("neg", "rax")
		c.store(RAX, q.Sym3)

	case quad.OpRPlus:
		c.fetchFloat(q.Sym1)
		c.fetchFloat(q.Sym2)
		c.instr0("faddp")
		c.storeFloat(q.Sym3)

	case quad.OpIPlus:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr("add", "rax, rcx")
		c.store(RAX, q.Sym3)

	case quad.OpRMinus:
		c.fetchFloat(q.Sym1)
		c.fetchFloat(q.Sym2)
		c.instr0("fsubp")
		c.storeFloat(q.Sym3)

	case quad.OpIMinus:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr("sub", "rax, rcx")
		c.store(RAX, q.Sym3)

	case quad.OpIOr:
		lTrue, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
		c.fetch(q.Sym1, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("jne", fmt.Sprintf("L%d", lTrue))
		c.fetch(q.Sym2, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("jne", fmt.Sprintf("L%d", lTrue))
		c.instr("mov", "rax, 0")
		c.instr("jmp", fmt.Sprintf("L%d", lDone))
		c.label(lTrue)
		c.instr("mov", "rax, 1")
		c.label(lDone)
		c.store(RAX, q.Sym3)

	case quad.OpIAnd:
		lFalse, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
		c.fetch(q.Sym1, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("je", fmt.Sprintf("L%d", lFalse))
		c.fetch(q.Sym2, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("je", fmt.Sprintf("L%d", lFalse))
		c.instr("mov", "rax, 1")
		c.instr("jmp", fmt.Sprintf("L%d", lDone))
		c.label(lFalse)
		c.instr("mov", "rax, 0")
		c.label(lDone)
		c.store(RAX, q.Sym3)

	case quad.OpRMult:
		c.fetchFloat(q.Sym1)
		c.fetchFloat(q.Sym2)
		c.instr0("fmulp")
		c.storeFloat(q.Sym3)

	case quad.OpIMult:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr("imul", "rax, rcx")
		c.store(RAX, q.Sym3)

	case quad.OpRDivide:
		c.fetchFloat(q.Sym1)
		c.fetchFloat(q.Sym2)
		c.instr0("fdivp")
		c.storeFloat(q.Sym3)

	case quad.OpIDivide:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr0("cqo")
		// Two-operand idiv: shorthand the target assembler accepts for the
		// single-operand form against the rdx:rax pair.
		c.instr("idiv", "rax, rcx")
		c.store(RAX, q.Sym3)

	case quad.OpIMod:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr0("cqo")
		c.instr("idiv", "rax, rcx")
		c.store(RDX, q.Sym3)

	case quad.OpREq:
		c.floatCompare(q, "je")
	case quad.OpRNe:
		c.floatCompare(q, "jne")
	case quad.OpRLt:
		c.floatCompareReversed(q, "jb")
	case quad.OpRGt:
		c.floatCompareReversed(q, "ja")

	case quad.OpIEq:
		c.intCompare(q, "je")
	case quad.OpINe:
		c.intCompare(q, "jne")
	case quad.OpILt:
		c.intCompare(q, "jl")
	case quad.OpIGt:
		c.intCompare(q, "jg")

	case quad.OpRStore, quad.OpIStore:
		c.fetch(q.Sym1, RAX)
		c.fetch(q.Sym3, RCX)
		c.instr("mov", "[rcx], rax")

	case quad.OpRAssign, quad.OpIAssign:
		// A plain 8-byte slot copy; bit-identical whether the slot holds an
		// int64 or a float64, so both assign variants share this path.
		c.fetch(q.Sym1, RAX)
		c.store(RAX, q.Sym3)

	case quad.OpParam:
		c.fetch(q.Sym1, RAX)
		c.instr("push", "rax")

	case quad.OpCall:
		c.expandCall(q)

	case quad.OpRReturn, quad.OpIReturn:
		c.fetch(q.Sym2, RAX)
		c.instr("jmp", fmt.Sprintf("L%d", q.Int1))

	case quad.OpLIndex:
		c.arrayAddress(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr("imul", fmt.Sprintf("rcx, %d", symtab.StackWidth))
		c.instr("sub", "rax, rcx")
		c.store(RAX, q.Sym3)

	case quad.OpRRIndex, quad.OpIRIndex:
		c.arrayAddress(q.Sym1, RAX)
		c.fetch(q.Sym2, RCX)
		c.instr("imul", fmt.Sprintf("rcx, %d", symtab.StackWidth))
		c.instr("sub", "rax, rcx")
		c.instr("mov", "rax, [rax]")
		c.store(RAX, q.Sym3)

	case quad.OpItoR:
		level, offset := c.find(q.Sym1)
		c.frameAddress(level, RCX)
		c.instr("fild", fmt.Sprintf("qword ptr [%s%s]", regName[RCX], signedOffset(offset)))
		c.storeFloat(q.Sym3)

	case quad.OpJmp:
		c.instr("jmp", fmt.Sprintf("L%d", q.Int1))

	case quad.OpJmpF:
		c.fetch(q.Sym2, RAX)
		c.instr("cmp", "rax, 0")
		c.instr("je", fmt.Sprintf("L%d", q.Int1))

	case quad.OpLabl:
		// Already handled by Expand before the trace comment.

	case quad.OpNop:
		c.sink.Fatal("codegen: nop quadruple reached expand()")

	default:
		c.sink.Fatal("codegen: unrecognized quad opcode %v", q.Op)
	}
}

// intCompare emits the six-instruction compare-and-materialize diamond
// shared by all four integer relational opcodes.
func (c *Context) intCompare(q quad.Quad, jumpTrue string) {
	lTrue, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
	c.fetch(q.Sym1, RAX)
	c.fetch(q.Sym2, RCX)
	c.instr("cmp", "rax, rcx")
	c.instr(jumpTrue, fmt.Sprintf("L%d", lTrue))
	c.instr("mov", "rax, 0")
	c.instr("jmp", fmt.Sprintf("L%d", lDone))
	c.label(lTrue)
	c.instr("mov", "rax, 1")
	c.label(lDone)
	c.store(RAX, q.Sym3)
}

// floatCompare handles = and <> : operand order doesn't matter for
// equality, so sym1 then sym2 are pushed in encounter order.
func (c *Context) floatCompare(q quad.Quad, jumpTrue string) {
	lTrue, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
	c.fetchFloat(q.Sym1)
	c.fetchFloat(q.Sym2)
	c.instr("fcomip", "ST(0), ST(1)")
	c.instr("fstp", "ST(0)")
	c.instr(jumpTrue, fmt.Sprintf("L%d", lTrue))
	c.instr("mov", "rax, 0")
	c.instr("jmp", fmt.Sprintf("L%d", lDone))
	c.label(lTrue)
	c.instr("mov", "rax, 1")
	c.label(lDone)
	c.store(RAX, q.Sym3)
}

// floatCompareReversed handles < and > : the operands are pushed in
// reverse (sym2 then sym1) so ST(0) holds the left-hand side when fcomip
// compares it against ST(1), matching the reference's documented ordering.
func (c *Context) floatCompareReversed(q quad.Quad, jumpTrue string) {
	lTrue, lDone := c.tab.GetNextLabel(), c.tab.GetNextLabel()
	c.fetchFloat(q.Sym2)
	c.fetchFloat(q.Sym1)
	c.instr("fcomip", "ST(0), ST(1)")
	c.instr("fstp", "ST(0)")
	c.instr(jumpTrue, fmt.Sprintf("L%d", lTrue))
	c.instr("mov", "rax, 0")
	c.instr("jmp", fmt.Sprintf("L%d", lDone))
	c.label(lTrue)
	c.instr("mov", "rax, 1")
	c.label(lDone)
	c.store(RAX, q.Sym3)
}

func (c *Context) expandCall(q quad.Quad) {
	callee := c.tab.GetSymbol(q.Sym1)
	switch callee.Kind {
	case symtab.KindFunc:
		c.instr("call", fmt.Sprintf("L%d\t# %s", callee.LabelNr, callee.ID))
		c.instr("add", fmt.Sprintf("rsp, %d", symtab.StackWidth*q.Int2))
		c.store(RAX, q.Sym3)
	case symtab.KindProc:
		c.instr("call", fmt.Sprintf("L%d\t# %s", callee.LabelNr, callee.ID))
		c.instr("add", fmt.Sprintf("rsp, %d", symtab.StackWidth*q.Int2))
	default:
		c.sink.Fatal("codegen: call to non-proc/func symbol %q", callee.ID)
	}
}
