// Package ast defines the typed Abstract Syntax Tree the optimizer,
// semantic analyzer, and (indirectly, via the quad list) code generator
// operate on. The Node/NodeType/Data-payload shape follows the teacher's
// own AST model; the node variants themselves are this domain's (Pascal
// literals, l-values, statements, reverse-linked lists) rather than the
// teacher's B-family expression set.
package ast

import "github.com/xplshn/pascbe/pkg/symtab"

// Pos is a source position, carried by every node.
type Pos struct {
	File   string
	Line   int
	Column int
}

// NodeType discriminates the node variants.
type NodeType int

const (
	// Literals
	Integer NodeType = iota
	Real

	// Identifier / l-value
	Id
	Indexed

	// Unary
	UMinus
	Not
	Cast

	// Binary arithmetic
	Add
	Sub
	Mult
	Divide
	IDiv
	Mod
	And
	Or

	// Binary relation
	Equal
	NotEqual
	LessThan
	GreaterThan

	// Call
	FunctionCall

	// Statements
	Assign
	If
	While
	Return
	ProcedureCall

	// Lists
	StmtList
	ExprList
	Elsif
	ElsifList
)

// Node is one AST node. Expression nodes (everything above the
// "Statements" group) carry a Type populated by semantic analysis;
// statement nodes leave Type at symtab.Undef.
type Node struct {
	NodeType NodeType
	Pos      Pos
	Data     interface{}
	Type     symtab.SymIndex
}

// --- Node data payloads ---

type IntegerData struct{ Value int64 }
type RealData struct{ Value float64 }
type IdData struct{ Sym symtab.SymIndex }
type IndexedData struct {
	ID    *Node // Id
	Index *Node
}
type UnaryData struct{ Expr *Node }       // UMinus, Not, Cast
type BinaryData struct{ Left, Right *Node }   // Add..Or
type RelationData struct{ Left, Right *Node } // Equal..GreaterThan
type FunctionCallData struct {
	ID     *Node // Id
	Params *Node // ExprList, may be nil
}
type AssignData struct{ LHS, RHS *Node }
type ElsifData struct {
	Cond *Node
	Body *Node // StmtList
}
type IfData struct {
	Cond   *Node
	Then   *Node // StmtList
	Elsifs *Node // ElsifList, may be nil
	Else   *Node // StmtList, may be nil
}
type WhileData struct {
	Cond *Node
	Body *Node // StmtList
}
type ReturnData struct{ Value *Node } // may be nil
type ProcedureCallData struct {
	ID     *Node // Id
	Params *Node // ExprList, may be nil
}

// Reverse-linked, tail-first lists: Preceding is walked before the tail
// element on iteration, so construction order == left-to-right order.
type StmtListData struct {
	Preceding *Node // StmtList, may be nil
	Last      *Node // statement node
}
type ExprListData struct {
	Preceding *Node // ExprList, may be nil
	Last      *Node // expression node
}
type ElsifListData struct {
	Preceding *Node // ElsifList, may be nil
	Last      *Node // Elsif node
}

// --- Constructors ---

func NewInteger(pos Pos, v int64) *Node { return &Node{NodeType: Integer, Pos: pos, Data: IntegerData{v}} }
func NewReal(pos Pos, v float64) *Node  { return &Node{NodeType: Real, Pos: pos, Data: RealData{v}} }
func NewId(pos Pos, sym symtab.SymIndex) *Node {
	return &Node{NodeType: Id, Pos: pos, Data: IdData{sym}}
}
func NewIndexed(pos Pos, id, index *Node) *Node {
	return &Node{NodeType: Indexed, Pos: pos, Data: IndexedData{id, index}}
}
func NewUMinus(pos Pos, expr *Node) *Node { return &Node{NodeType: UMinus, Pos: pos, Data: UnaryData{expr}} }
func NewNot(pos Pos, expr *Node) *Node    { return &Node{NodeType: Not, Pos: pos, Data: UnaryData{expr}} }
func NewCast(pos Pos, expr *Node) *Node   { return &Node{NodeType: Cast, Pos: pos, Data: UnaryData{expr}} }

func newBinary(t NodeType, pos Pos, left, right *Node) *Node {
	return &Node{NodeType: t, Pos: pos, Data: BinaryData{left, right}}
}

func NewAdd(pos Pos, l, r *Node) *Node    { return newBinary(Add, pos, l, r) }
func NewSub(pos Pos, l, r *Node) *Node    { return newBinary(Sub, pos, l, r) }
func NewMult(pos Pos, l, r *Node) *Node   { return newBinary(Mult, pos, l, r) }
func NewDivide(pos Pos, l, r *Node) *Node { return newBinary(Divide, pos, l, r) }
func NewIDiv(pos Pos, l, r *Node) *Node   { return newBinary(IDiv, pos, l, r) }
func NewMod(pos Pos, l, r *Node) *Node    { return newBinary(Mod, pos, l, r) }
func NewAnd(pos Pos, l, r *Node) *Node    { return newBinary(And, pos, l, r) }
func NewOr(pos Pos, l, r *Node) *Node     { return newBinary(Or, pos, l, r) }

func newRelation(t NodeType, pos Pos, left, right *Node) *Node {
	return &Node{NodeType: t, Pos: pos, Data: RelationData{left, right}}
}

func NewEqual(pos Pos, l, r *Node) *Node       { return newRelation(Equal, pos, l, r) }
func NewNotEqual(pos Pos, l, r *Node) *Node    { return newRelation(NotEqual, pos, l, r) }
func NewLessThan(pos Pos, l, r *Node) *Node    { return newRelation(LessThan, pos, l, r) }
func NewGreaterThan(pos Pos, l, r *Node) *Node { return newRelation(GreaterThan, pos, l, r) }

func NewFunctionCall(pos Pos, id, params *Node) *Node {
	return &Node{NodeType: FunctionCall, Pos: pos, Data: FunctionCallData{id, params}}
}
func NewAssign(pos Pos, lhs, rhs *Node) *Node {
	return &Node{NodeType: Assign, Pos: pos, Data: AssignData{lhs, rhs}}
}
func NewIf(pos Pos, cond, then, elsifs, els *Node) *Node {
	return &Node{NodeType: If, Pos: pos, Data: IfData{cond, then, elsifs, els}}
}
func NewWhile(pos Pos, cond, body *Node) *Node {
	return &Node{NodeType: While, Pos: pos, Data: WhileData{cond, body}}
}
func NewReturn(pos Pos, value *Node) *Node {
	return &Node{NodeType: Return, Pos: pos, Data: ReturnData{value}}
}
func NewProcedureCall(pos Pos, id, params *Node) *Node {
	return &Node{NodeType: ProcedureCall, Pos: pos, Data: ProcedureCallData{id, params}}
}

func NewStmtList(preceding, last *Node) *Node {
	return &Node{NodeType: StmtList, Data: StmtListData{preceding, last}}
}
func NewExprList(preceding, last *Node) *Node {
	return &Node{NodeType: ExprList, Data: ExprListData{preceding, last}}
}
func NewElsif(pos Pos, cond, body *Node) *Node {
	return &Node{NodeType: Elsif, Pos: pos, Data: ElsifData{cond, body}}
}
func NewElsifList(preceding, last *Node) *Node {
	return &Node{NodeType: ElsifList, Data: ElsifListData{preceding, last}}
}

// IsLiteral reports whether n is an Integer or Real literal node.
func IsLiteral(n *Node) bool {
	return n != nil && (n.NodeType == Integer || n.NodeType == Real)
}

// IsBinop reports whether n is one of the eight constant-foldable binary
// arithmetic/logical operators.
func IsBinop(n *Node) bool {
	switch n.NodeType {
	case Add, Sub, Mult, Divide, IDiv, Mod, And, Or:
		return true
	default:
		return false
	}
}
