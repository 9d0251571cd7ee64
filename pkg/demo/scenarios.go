// Package demo builds small, self-contained programs directly through the
// symtab and ast public constructors — standing in for the lexer/parser
// front end spec.md deliberately places out of scope. Each scenario here
// mirrors one of the concrete scenarios spec.md §8 names, so the pipeline
// (optimizer, semantic, codegen) has a minimal but realistic fixture to run
// against in both cmd/pascbe's demo output and the package test suites.
package demo

import (
	"github.com/xplshn/pascbe/pkg/ast"
	"github.com/xplshn/pascbe/pkg/quad"
	"github.com/xplshn/pascbe/pkg/symtab"
)

var zeroPos = ast.Pos{File: "demo.pas", Line: 1, Column: 1}

// Scenario is one runnable fixture: a procedure/function symbol plus its
// (unoptimized, untyped) statement-list body.
type Scenario struct {
	Name string
	Env  symtab.SymIndex
	Body *ast.Node
}

// declProc allocates a Proc or Func entry at the given level with ar_size
// locals bytes (pre-alignment) and a fresh label.
func declProc(tab *symtab.Table, name string, level, arSize int, isFunc bool, retType symtab.SymIndex) symtab.SymIndex {
	kind := symtab.KindProc
	if isFunc {
		kind = symtab.KindFunc
	}
	return tab.NewEntry(symtab.Entry{
		Kind:    kind,
		ID:      name,
		Level:   level,
		ARSize:  arSize,
		LabelNr: tab.GetNextLabel(),
		RetType: retType,
	})
}

func declVar(tab *symtab.Table, name string, level, offset int, typ symtab.SymIndex) symtab.SymIndex {
	return tab.NewEntry(symtab.Entry{Kind: symtab.KindVar, ID: name, Level: level, Offset: offset, Type: typ})
}

func declArray(tab *symtab.Table, name string, level, offset int, elemType symtab.SymIndex, card int) symtab.SymIndex {
	return tab.NewEntry(symtab.Entry{Kind: symtab.KindArray, ID: name, Level: level, Offset: offset, ElemType: elemType, Card: card})
}

func declParam(tab *symtab.Table, name string, level, offset int, typ symtab.SymIndex, prev symtab.SymIndex) symtab.SymIndex {
	return tab.NewEntry(symtab.Entry{Kind: symtab.KindParam, ID: name, Level: level, Offset: offset, Type: typ, PrevParam: prev})
}

func declIntConst(tab *symtab.Table, name string, v int64) symtab.SymIndex {
	return tab.NewEntry(symtab.Entry{Kind: symtab.KindConst, ID: name, Type: tab.IntegerType, Const: symtab.ConstValue{IVal: v}})
}

// PureIntFold builds spec.md §8 scenario 1: `result := (2 + 3) * 4` inside a
// procedure with one local integer. After optimizer.Optimize, the rhs
// collapses to a single Integer(20) literal.
func PureIntFold(tab *symtab.Table) Scenario {
	proc := declProc(tab, "fold_demo", 1, 8, false, symtab.Undef)
	result := declVar(tab, "result", 1, 0, tab.IntegerType)

	rhs := ast.NewMult(
		zeroPos,
		ast.NewAdd(zeroPos, ast.NewInteger(zeroPos, 2), ast.NewInteger(zeroPos, 3)),
		ast.NewInteger(zeroPos, 4),
	)
	assign := ast.NewAssign(zeroPos, ast.NewId(zeroPos, result), rhs)
	body := ast.NewStmtList(nil, assign)
	return Scenario{Name: "pure_int_fold", Env: proc, Body: body}
}

// MixedArithmeticCast builds spec.md §8 scenario 2: `x : real := 1 + 2.5`.
// The optimizer leaves the Add untouched (mixed literal types are not
// foldable); semantic.TypeCheck wraps the Integer(1) operand in a Cast.
func MixedArithmeticCast(tab *symtab.Table) Scenario {
	proc := declProc(tab, "cast_demo", 1, 8, false, symtab.Undef)
	x := declVar(tab, "x", 1, 0, tab.RealType)

	rhs := ast.NewAdd(zeroPos, ast.NewInteger(zeroPos, 1), ast.NewReal(zeroPos, 2.5))
	assign := ast.NewAssign(zeroPos, ast.NewId(zeroPos, x), rhs)
	body := ast.NewStmtList(nil, assign)
	return Scenario{Name: "mixed_arithmetic_cast", Env: proc, Body: body}
}

// ShortCircuitAndZero builds spec.md §8 scenario 3: a procedure that calls
// a zero-argument function "expensive" and ANDs its result against the
// literal 0. The optimizer must not fold this (one operand is a
// FunctionCall, not a literal); codegen's iand dispatch still evaluates
// "expensive" unconditionally since the short-circuit lives at the
// emitted-quad level, not the AST level.
func ShortCircuitAndZero(tab *symtab.Table) (Scenario, symtab.SymIndex) {
	expensive := declProc(tab, "expensive", 1, 0, true, tab.IntegerType)
	returnStmt := ast.NewReturn(zeroPos, ast.NewInteger(zeroPos, 1))
	expensiveBody := ast.NewStmtList(nil, returnStmt)
	_ = expensiveBody // the callee's body is neither type-checked nor emitted by this scenario

	// 16 bytes of locals: flag at offset 0, the quad fixture's call-result
	// temporary at offset 8 (see ShortCircuitQuads).
	proc := declProc(tab, "shortcircuit_demo", 1, 16, false, symtab.Undef)
	flag := declVar(tab, "flag", 1, 0, tab.IntegerType)

	call := ast.NewFunctionCall(zeroPos, ast.NewId(zeroPos, expensive), nil)
	cond := ast.NewAnd(zeroPos, ast.NewInteger(zeroPos, 0), call)
	assign := ast.NewAssign(zeroPos, ast.NewId(zeroPos, flag), cond)
	body := ast.NewStmtList(nil, assign)
	return Scenario{Name: "shortcircuit_and_zero", Env: proc, Body: body}, expensive
}

// NestedCall builds spec.md §8 scenario 4: a level-1 procedure "outer" and
// a level-2 procedure "inner" nested inside it, where inner calls a
// level-1 sibling function "square". Inner's prologue must copy two
// display entries (its own level) before pushing its own frame pointer.
func NestedCall(tab *symtab.Table) (outer, inner, square Scenario) {
	squareSym := declProc(tab, "square", 1, 0, true, tab.RealType)
	n := declParam(tab, "n", 1, 0, tab.IntegerType, symtab.Undef)
	tab.GetSymbol(squareSym).LastParam = n
	squareBody := ast.NewStmtList(nil,
		ast.NewReturn(zeroPos, ast.NewMult(zeroPos, ast.NewId(zeroPos, n), ast.NewReal(zeroPos, 2.5))))

	innerSym := declProc(tab, "inner", 2, 8, false, symtab.Undef)
	v := declParam(tab, "v", 2, 0, tab.IntegerType, symtab.Undef)
	tab.GetSymbol(innerSym).LastParam = v
	scaled := declVar(tab, "scaled", 2, 0, tab.RealType)
	args := ast.NewExprList(nil, ast.NewId(zeroPos, v))
	innerCall := ast.NewFunctionCall(zeroPos, ast.NewId(zeroPos, squareSym), args)
	innerBody := ast.NewStmtList(nil, ast.NewAssign(zeroPos, ast.NewId(zeroPos, scaled), innerCall))

	outerSym := declProc(tab, "outer", 1, 0, false, symtab.Undef)
	a := declParam(tab, "a", 1, 0, tab.IntegerType, symtab.Undef)
	tab.GetSymbol(outerSym).LastParam = a
	outerArgs := ast.NewExprList(nil, ast.NewId(zeroPos, a))
	outerCall := ast.NewProcedureCall(zeroPos, ast.NewId(zeroPos, innerSym), outerArgs)
	outerBody := ast.NewStmtList(nil, outerCall)

	return Scenario{Name: "outer", Env: outerSym, Body: outerBody},
		Scenario{Name: "inner", Env: innerSym, Body: innerBody},
		Scenario{Name: "square", Env: squareSym, Body: squareBody}
}

// ArrayIndex builds spec.md §8 scenario 5: `a[i]` where a is
// array[10] of integer at local offset 8 and i is an integer at local
// offset 0, inside a level-1 procedure.
func ArrayIndex(tab *symtab.Table) Scenario {
	// i at offset 0 (8 bytes), a's 10 elements at offsets 8..87 (80 bytes),
	// elem at offset 88 (8 bytes): 96 bytes of locals total.
	proc := declProc(tab, "array_demo", 1, 96, false, symtab.Undef)
	i := declVar(tab, "i", 1, 0, tab.IntegerType)
	a := declArray(tab, "a", 1, 8, tab.IntegerType, 10)
	elem := declVar(tab, "elem", 1, 88, tab.IntegerType)

	idxExpr := ast.NewIndexed(zeroPos, ast.NewId(zeroPos, a), ast.NewId(zeroPos, i))
	assign := ast.NewAssign(zeroPos, ast.NewId(zeroPos, elem), idxExpr)
	body := ast.NewStmtList(nil, assign)
	return Scenario{Name: "array_index", Env: proc, Body: body}
}

// MissingReturn builds spec.md §8 scenario 6: a function whose body
// contains no Return statement at all.
func MissingReturn(tab *symtab.Table) Scenario {
	fn := declProc(tab, "no_return", 1, 0, true, tab.IntegerType)
	result := declVar(tab, "unused", 1, 0, tab.IntegerType)
	assign := ast.NewAssign(zeroPos, ast.NewId(zeroPos, result), ast.NewInteger(zeroPos, 1))
	body := ast.NewStmtList(nil, assign)
	return Scenario{Name: "missing_return", Env: fn, Body: body}
}

// ShortCircuitQuads hand-authors the quad list codegen.cc's iand case
// expects for the ShortCircuitAndZero scenario: call "expensive", then AND
// its result against the literal 0 and store into flag. Quad generation
// from a typed AST is spec.md's out-of-scope front end, so this fixture
// stands in for it the same way the rest of this package stands in for the
// lexer/parser.
func ShortCircuitQuads(tab *symtab.Table, expensive symtab.SymIndex, flagVar symtab.SymIndex) *quad.List {
	callResult := declVar(tab, "t_call", 1, 8, tab.IntegerType)
	zeroConst := declIntConst(tab, "zero", 0)

	q := &quad.List{}
	q.Append(quad.Quad{Op: quad.OpCall, Sym1: expensive, Sym3: callResult, Int2: 0})
	q.Append(quad.Quad{Op: quad.OpIAnd, Sym1: zeroConst, Sym2: callResult, Sym3: flagVar})
	return q
}
