// Package optimizer implements constant folding: a bottom-up rewrite of
// expression subtrees that collapses a binary operation whose operands are
// both literals into a single literal node. The single-function,
// node-type-switch shape follows the teacher's pkg/ast FoldConstants; the
// per-opcode folding rules and the exact recurse-then-fold traversal order
// follow original_source/code/remaining/optimize.cc (ast_add::optimize and
// friends forwarding to one optimize_binop/optimize_binrel helper, which
// right-then-left recurses before folding right-then-left).
package optimizer

import "github.com/xplshn/pascbe/pkg/ast"

// Optimize rewrites root (a StmtList, possibly nil) in place, folding every
// binary arithmetic/logical node (Add..Or) whose operands are both same-typed
// literals. Relation nodes are not folded themselves; only their operands
// are. Running Optimize twice over an already-folded tree is a no-op:
// folding is a fixed point.
func Optimize(root *ast.Node) {
	optimizeNode(root)
}

// optimizeNode recurses into n's children, then — for the node kinds the
// spec names (Cast, UMinus, Not, If.cond, While.cond, Elsif.cond,
// Return.value, Assign.rhs, Indexed.index, and both operands of a binary
// op/relation) — passes the child edge through foldConstants.
func optimizeNode(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.NodeType {
	case ast.Integer, ast.Real:
		// Literals fold to nothing further; nothing to recurse into.

	case ast.Id:
		// An identifier's value can change at run time (and named-constant
		// propagation is a deliberate non-goal), so there is nothing to do.

	case ast.Indexed:
		d := n.Data.(ast.IndexedData)
		optimizeNode(d.Index)
		d.Index = foldConstants(d.Index)
		n.Data = d

	case ast.UMinus, ast.Not, ast.Cast:
		d := n.Data.(ast.UnaryData)
		optimizeNode(d.Expr)
		d.Expr = foldConstants(d.Expr)
		n.Data = d

	case ast.Add, ast.Sub, ast.Mult, ast.Divide, ast.IDiv, ast.Mod, ast.And, ast.Or:
		d := n.Data.(ast.BinaryData)
		optimizeNode(d.Right)
		optimizeNode(d.Left)
		d.Right = foldConstants(d.Right)
		d.Left = foldConstants(d.Left)
		n.Data = d

	case ast.Equal, ast.NotEqual, ast.LessThan, ast.GreaterThan:
		d := n.Data.(ast.RelationData)
		optimizeNode(d.Right)
		optimizeNode(d.Left)
		d.Right = foldConstants(d.Right)
		d.Left = foldConstants(d.Left)
		n.Data = d

	case ast.FunctionCall:
		d := n.Data.(ast.FunctionCallData)
		optimizeNode(d.Params)

	case ast.ProcedureCall:
		d := n.Data.(ast.ProcedureCallData)
		optimizeNode(d.Params)

	case ast.Assign:
		d := n.Data.(ast.AssignData)
		optimizeNode(d.LHS)
		optimizeNode(d.RHS)
		d.RHS = foldConstants(d.RHS)
		n.Data = d

	case ast.If:
		d := n.Data.(ast.IfData)
		optimizeNode(d.Cond)
		d.Cond = foldConstants(d.Cond)
		optimizeNode(d.Then)
		optimizeNode(d.Elsifs)
		optimizeNode(d.Else)
		n.Data = d

	case ast.While:
		d := n.Data.(ast.WhileData)
		optimizeNode(d.Cond)
		d.Cond = foldConstants(d.Cond)
		optimizeNode(d.Body)
		n.Data = d

	case ast.Return:
		d := n.Data.(ast.ReturnData)
		if d.Value != nil {
			optimizeNode(d.Value)
			d.Value = foldConstants(d.Value)
			n.Data = d
		}

	case ast.Elsif:
		d := n.Data.(ast.ElsifData)
		optimizeNode(d.Cond)
		d.Cond = foldConstants(d.Cond)
		optimizeNode(d.Body)
		n.Data = d

	case ast.StmtList:
		d := n.Data.(ast.StmtListData)
		optimizeNode(d.Preceding)
		optimizeNode(d.Last)

	case ast.ExprList:
		d := n.Data.(ast.ExprListData)
		optimizeNode(d.Preceding)
		optimizeNode(d.Last)

	case ast.ElsifList:
		d := n.Data.(ast.ElsifListData)
		optimizeNode(d.Preceding)
		optimizeNode(d.Last)
	}
}

// foldConstants is the single-node rewriter: if n is a binary
// operation (Add..Or) both of whose operands are literals of a foldable
// combination, it returns a freshly allocated literal carrying n's
// position; otherwise it returns n unchanged. Division/modulus by a
// folded-zero right operand is deliberately left untransformed — the
// reference evaluates it at fold time and crashes the compiler itself; this
// port lets the runtime trap instead, per spec.
func foldConstants(n *ast.Node) *ast.Node {
	if n == nil || !ast.IsBinop(n) {
		return n
	}

	var left, right *ast.Node
	switch n.NodeType {
	case ast.Add, ast.Sub, ast.Mult, ast.Divide, ast.IDiv, ast.Mod, ast.And, ast.Or:
		d := n.Data.(ast.BinaryData)
		left, right = d.Left, d.Right
	}

	bothInt := left.NodeType == ast.Integer && right.NodeType == ast.Integer
	bothReal := left.NodeType == ast.Real && right.NodeType == ast.Real
	if !bothInt && !bothReal {
		return n
	}

	if bothInt {
		l, r := left.Data.(ast.IntegerData).Value, right.Data.(ast.IntegerData).Value
		switch n.NodeType {
		case ast.Add:
			return ast.NewInteger(n.Pos, l+r)
		case ast.Sub:
			return ast.NewInteger(n.Pos, l-r)
		case ast.Mult:
			return ast.NewInteger(n.Pos, l*r)
		case ast.IDiv:
			if r == 0 {
				return n
			}
			return ast.NewInteger(n.Pos, l/r)
		case ast.Mod:
			if r == 0 {
				return n
			}
			return ast.NewInteger(n.Pos, l%r)
		case ast.And:
			return ast.NewInteger(n.Pos, boolToInt(l != 0 && r != 0))
		case ast.Or:
			return ast.NewInteger(n.Pos, boolToInt(l != 0 || r != 0))
		default:
			return n
		}
	}

	// bothReal
	l, r := left.Data.(ast.RealData).Value, right.Data.(ast.RealData).Value
	switch n.NodeType {
	case ast.Add:
		return ast.NewReal(n.Pos, l+r)
	case ast.Sub:
		return ast.NewReal(n.Pos, l-r)
	case ast.Mult:
		return ast.NewReal(n.Pos, l*r)
	case ast.Divide:
		if r == 0 {
			return n
		}
		return ast.NewReal(n.Pos, l/r)
	default:
		// IDiv/Mod/And/Or are not defined over Real,Real — left untransformed.
		return n
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
