// Package semantic implements the type checker: it synthesizes every
// expression node's result type, inserts implicit integer-to-real Cast
// nodes, validates call signatures against the symbol table's parameter
// chains, and enforces function-return discipline. The Checker-threading
// shape follows the teacher's pkg/typeChecker/typeChecker.go
// (TypeChecker struct carrying cfg/scope state, dispatched per node kind);
// the coercion and error rules follow
// original_source/code/remaining/semantic.cc's check_binop1/check_binop2/
// check_binrel families and ast_return::type_check.
package semantic

import (
	"github.com/xplshn/pascbe/pkg/ast"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/symtab"
)

// Checker threads the symbol table, diagnostic sink and config through one
// type-checking pass. It is not reentrant across concurrent goroutines —
// per spec.md §5 the whole pipeline is single-threaded.
type Checker struct {
	tab  *symtab.Table
	sink *diag.Sink
	cfg  *config.Config

	// hasReturn records whether a Return was seen in the block currently
	// being checked; reset at the start of every TypeCheck call, the way
	// the reference's static has_return is reset in do_typecheck().
	hasReturn bool
}

func NewChecker(tab *symtab.Table, sink *diag.Sink, cfg *config.Config) *Checker {
	return &Checker{tab: tab, sink: sink, cfg: cfg}
}

func toDiagPos(p ast.Pos) diag.Pos {
	return diag.Pos{File: p.File, Line: p.Line, Column: p.Column}
}

// TypeCheck runs the analyzer over body, which executes in the lexical
// environment env (a Proc/Func SymIndex, or symtab.Undef at program scope).
// env must already be the table's current environment (callers set it via
// tab.SetCurrentEnvironment before calling, and restore the previous value
// after — the same discipline the reference's current_environment() holds).
func (c *Checker) TypeCheck(env symtab.SymIndex, body *ast.Node) {
	c.hasReturn = false
	if body != nil {
		c.checkStmt(body)
	}

	if env != symtab.Undef && c.tab.GetSymbol(env).Kind == symtab.KindFunc && !c.hasReturn {
		pos := diag.Pos{}
		if body != nil {
			pos = toDiagPos(body.Pos)
		}
		c.sink.Error(pos, "a function must return a value")
	}
}

// synth synthesizes and records n's result type, returning it. n must be an
// expression node; calling synth on any other node kind is a programmer
// error (mirrors the reference's fatal "abstract class" dispatch).
func (c *Checker) synth(n *ast.Node) symtab.SymIndex {
	if n == nil {
		return c.tab.VoidType
	}

	var t symtab.SymIndex
	switch n.NodeType {
	case ast.Integer:
		t = c.tab.IntegerType
	case ast.Real:
		t = c.tab.RealType
	case ast.Id:
		t = c.synthID(n)
	case ast.Indexed:
		t = c.synthIndexed(n)
	case ast.UMinus:
		t = c.synthUMinus(n)
	case ast.Not:
		t = c.synthNot(n)
	case ast.Cast:
		// A Cast node is only ever inserted by this pass itself, already
		// typed; nothing re-checks it on a second run (type_check on an
		// already-typed AST produces no new diagnostics).
		return n.Type
	case ast.Add, ast.Sub, ast.Mult:
		t = c.checkBinop1(n)
	case ast.Divide:
		t = c.checkDivide(n)
	case ast.IDiv, ast.Mod, ast.And, ast.Or:
		t = c.checkBinop2(n)
	case ast.Equal, ast.NotEqual, ast.LessThan, ast.GreaterThan:
		t = c.checkBinrel(n)
	case ast.FunctionCall:
		t = c.synthFunctionCall(n)
	default:
		c.sink.Fatal("semantic: synth called on non-expression node type %v", n.NodeType)
	}
	n.Type = t
	return t
}

func (c *Checker) synthID(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.IdData)
	sym := c.tab.GetSymbol(d.Sym)
	if sym.Kind == symtab.KindNameType {
		return d.Sym
	}
	return sym.Type
}

func (c *Checker) synthIndexed(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.IndexedData)
	idSym := d.ID.Data.(ast.IdData).Sym
	entry := c.tab.GetSymbol(idSym)
	if entry.Kind != symtab.KindArray {
		c.sink.Error(toDiagPos(d.ID.Pos), "'%s' is not an array and cannot be indexed", c.name(idSym))
		c.synth(d.Index)
		return c.tab.VoidType
	}
	idxType := c.synth(d.Index)
	if idxType != c.tab.IntegerType {
		c.sink.Error(toDiagPos(d.Index.Pos), "array index must be of integer type")
	}
	return entry.ElemType
}

func (c *Checker) synthUMinus(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.UnaryData)
	t := c.synth(d.Expr)
	if t == c.tab.VoidType {
		c.sink.Error(toDiagPos(n.Pos), "unary minus requires a numeric operand")
	}
	return t
}

func (c *Checker) synthNot(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.UnaryData)
	t := c.synth(d.Expr)
	if t != c.tab.IntegerType {
		c.sink.Error(toDiagPos(n.Pos), "'not' requires an integer operand")
	}
	return c.tab.IntegerType
}

// castChild wraps *child in a Cast node (inheriting child's position,
// typed real) iff child's synthesized type is integer_type. The caller has
// already verified childType is integer_type or real_type; any other type
// is reported by the caller before castChild is invoked.
func (c *Checker) castChild(child **ast.Node, childType symtab.SymIndex) {
	if childType == c.tab.IntegerType {
		cast := ast.NewCast((*child).Pos, *child)
		cast.Type = c.tab.RealType
		*child = cast
	}
}

// checkBinop1 implements Add/Sub/Mult: both sides synthesized; equal types
// (and not void) return that type unchanged, otherwise an integer_type side
// is wrapped in Cast and the result is real_type. A void operand on either
// side is an error, and the result is the other side's type (no Cast is
// inserted).
func (c *Checker) checkBinop1(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.BinaryData)
	lt := c.synth(d.Left)
	rt := c.synth(d.Right)

	if lt == c.tab.IntegerType && rt == c.tab.IntegerType {
		return c.tab.IntegerType
	}

	if lt == c.tab.VoidType || rt == c.tab.VoidType {
		if lt == c.tab.VoidType {
			c.sink.Error(toDiagPos(d.Left.Pos), "operand must be of integer or real type")
		}
		if rt == c.tab.VoidType {
			c.sink.Error(toDiagPos(d.Right.Pos), "operand must be of integer or real type")
		}
		if lt == c.tab.VoidType {
			return rt
		}
		return lt
	}

	if lt != c.tab.RealType {
		if lt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Left.Pos), "operand must be of integer or real type")
		} else {
			c.castChild(&d.Left, lt)
		}
	}
	if rt != c.tab.RealType {
		if rt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Right.Pos), "operand must be of integer or real type")
		} else {
			c.castChild(&d.Right, rt)
		}
	}
	n.Data = d
	return c.tab.RealType
}

// checkDivide forces each side independently to real_type.
func (c *Checker) checkDivide(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.BinaryData)
	lt := c.synth(d.Left)
	if lt != c.tab.RealType {
		if lt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Left.Pos), "operand of '/' must be of integer or real type")
		} else {
			c.castChild(&d.Left, lt)
		}
	}
	rt := c.synth(d.Right)
	if rt != c.tab.RealType {
		if rt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Right.Pos), "operand of '/' must be of integer or real type")
		} else {
			c.castChild(&d.Right, rt)
		}
	}
	n.Data = d
	return c.tab.RealType
}

// checkBinop2 implements And/Or/IDiv/Mod: both sides must already be
// integer_type, result integer_type.
func (c *Checker) checkBinop2(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.BinaryData)
	lt := c.synth(d.Left)
	rt := c.synth(d.Right)
	if lt != c.tab.IntegerType {
		c.sink.Error(toDiagPos(d.Left.Pos), "operand must be of integer type")
	}
	if rt != c.tab.IntegerType {
		c.sink.Error(toDiagPos(d.Right.Pos), "operand must be of integer type")
	}
	return c.tab.IntegerType
}

// checkBinrel implements the four relational operators: same coercion
// rules as checkBinop1, result always integer_type.
func (c *Checker) checkBinrel(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.RelationData)
	lt := c.synth(d.Left)
	rt := c.synth(d.Right)

	if lt == c.tab.IntegerType && rt == c.tab.IntegerType {
		return c.tab.IntegerType
	}

	if lt != c.tab.RealType {
		if lt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Left.Pos), "operand must be of integer or real type")
		} else {
			c.castChild(&d.Left, lt)
		}
	}
	if rt != c.tab.RealType {
		if rt != c.tab.IntegerType {
			c.sink.Error(toDiagPos(d.Right.Pos), "operand must be of integer or real type")
		} else {
			c.castChild(&d.Right, rt)
		}
	}
	n.Data = d
	return c.tab.IntegerType
}

func (c *Checker) synthFunctionCall(n *ast.Node) symtab.SymIndex {
	d := n.Data.(ast.FunctionCallData)
	idSym := d.ID.Data.(ast.IdData).Sym
	entry := c.tab.GetSymbol(idSym)
	if entry.Kind != symtab.KindFunc {
		c.sink.Error(toDiagPos(d.ID.Pos), "'%s' is not a function", c.name(idSym))
		c.checkArgs(d.ID, idSym, d.Params)
		return c.tab.VoidType
	}
	c.checkArgs(d.ID, idSym, d.Params)
	return entry.RetType
}

func (c *Checker) checkProcedureCall(n *ast.Node) {
	d := n.Data.(ast.ProcedureCallData)
	idSym := d.ID.Data.(ast.IdData).Sym
	entry := c.tab.GetSymbol(idSym)
	if entry.Kind != symtab.KindProc {
		c.sink.Error(toDiagPos(d.ID.Pos), "'%s' is not a procedure", c.name(idSym))
	}
	c.checkArgs(d.ID, idSym, d.Params)
}

// checkArgs walks the callee's formals (reverse declaration order, via
// PrevParam) in parallel with the actual ExprList (walked tail-first: Last
// then Preceding, which is the same reverse order) exactly as the
// reference's chk_param does. A length mismatch is reported once, at the
// call site; type mismatches are reported per parameter and do not stop
// the walk.
func (c *Checker) checkArgs(callID *ast.Node, callee symtab.SymIndex, actuals *ast.Node) {
	entry := c.tab.GetSymbol(callee)
	formal := entry.LastParam
	actual := actuals

	for formal != symtab.Undef || actual != nil {
		if formal == symtab.Undef {
			c.sink.Error(toDiagPos(callID.Pos), "too many actual parameters in call to '%s'", c.name(callee))
			break
		}
		if actual == nil {
			c.sink.Error(toDiagPos(callID.Pos), "too few actual parameters in call to '%s'", c.name(callee))
			break
		}

		ed := actual.Data.(ast.ExprListData)
		actualExpr := ed.Last
		actualType := c.synth(actualExpr)
		formalEntry := c.tab.GetSymbol(formal)
		if actualType != formalEntry.Type {
			c.sink.Error(toDiagPos(actualExpr.Pos),
				"parameter type mismatch in call to '%s'", c.name(callee))
		}

		formal = formalEntry.PrevParam
		actual = ed.Preceding
	}
}

func (c *Checker) name(sym symtab.SymIndex) string {
	return c.tab.GetSymbol(sym).ID
}

// checkStmt type-checks a statement node. Statement nodes are never typed
// (their Type field stays symtab.Undef) — they produce no value.
func (c *Checker) checkStmt(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.NodeType {
	case ast.StmtList:
		d := n.Data.(ast.StmtListData)
		c.checkStmt(d.Preceding)
		c.checkStmt(d.Last)

	case ast.Assign:
		c.checkAssign(n)

	case ast.If:
		c.checkIf(n)

	case ast.While:
		c.checkWhile(n)

	case ast.Return:
		c.checkReturn(n)

	case ast.ProcedureCall:
		c.checkProcedureCall(n)

	case ast.Elsif, ast.ElsifList:
		// Only ever visited from checkIf.
		c.sink.Fatal("semantic: checkStmt called directly on %v", n.NodeType)

	default:
		c.sink.Fatal("semantic: checkStmt called on unrecognized statement node %v", n.NodeType)
	}
}

func (c *Checker) checkAssign(n *ast.Node) {
	d := n.Data.(ast.AssignData)
	lt := c.synth(d.LHS)
	rt := c.synth(d.RHS)

	if lt == c.tab.RealType && rt == c.tab.IntegerType {
		c.castChild(&d.RHS, rt)
		if c.cfg.IsWarningEnabled(config.WarnWideningCoercion) {
			pos := toDiagPos(d.RHS.Pos)
			if c.cfg.WarnAsError {
				c.sink.Error(pos, "implicit widening of integer to real in assignment")
			} else {
				c.sink.Warn(pos, "implicit widening of integer to real in assignment")
			}
		}
	} else if lt != rt {
		c.sink.Error(toDiagPos(n.Pos), "incompatible types in assignment")
	}
	n.Data = d
}

func (c *Checker) checkCond(cond *ast.Node, context string) {
	if c.synth(cond) != c.tab.IntegerType {
		c.sink.Error(toDiagPos(cond.Pos), "%s condition must be of integer type", context)
	}
}

func (c *Checker) checkIf(n *ast.Node) {
	d := n.Data.(ast.IfData)
	c.checkCond(d.Cond, "if")
	c.checkStmt(d.Then)
	c.checkElsifList(d.Elsifs)
	c.checkStmt(d.Else)
}

func (c *Checker) checkElsifList(n *ast.Node) {
	if n == nil {
		return
	}
	d := n.Data.(ast.ElsifListData)
	c.checkElsifList(d.Preceding)
	if d.Last != nil {
		ed := d.Last.Data.(ast.ElsifData)
		c.checkCond(ed.Cond, "elsif")
		c.checkStmt(ed.Body)
	}
}

func (c *Checker) checkWhile(n *ast.Node) {
	d := n.Data.(ast.WhileData)
	c.checkCond(d.Cond, "while")
	c.checkStmt(d.Body)
}

// checkReturn implements ast_return::type_check. env is always the symbol
// table's CurrentEnvironment, fetched directly (mirroring the reference's
// sym_tab->get_symbol(sym_tab->current_environment())).
func (c *Checker) checkReturn(n *ast.Node) {
	c.hasReturn = true
	d := n.Data.(ast.ReturnData)

	env := c.tab.CurrentEnvironment()
	envEntry := c.tab.GetSymbol(env)

	if d.Value == nil {
		if envEntry.Kind != symtab.KindProc {
			c.sink.Error(toDiagPos(n.Pos), "must return a value from a function")
		}
		return
	}

	valueType := c.synth(d.Value)

	if envEntry.Kind != symtab.KindFunc {
		c.sink.Error(toDiagPos(n.Pos), "procedures may not return a value")
		return
	}

	if envEntry.RetType != valueType {
		c.sink.Error(toDiagPos(d.Value.Pos), "return type does not match the function's declared type")
	}
}
