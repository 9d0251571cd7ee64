package optimizer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/pascbe/pkg/ast"
	"github.com/xplshn/pascbe/pkg/optimizer"
)

var pos = ast.Pos{File: "t.pas", Line: 1, Column: 1}

func assignRHS(t *testing.T, body *ast.Node) *ast.Node {
	t.Helper()
	d, ok := body.Data.(ast.AssignData)
	if !ok {
		t.Fatalf("expected Assign node, got %T", body.Data)
	}
	return d.RHS
}

func TestOptimizePureIntFold(t *testing.T) {
	// (2 + 3) * 4 folds all the way down to a single literal.
	expr := ast.NewMult(pos,
		ast.NewAdd(pos, ast.NewInteger(pos, 2), ast.NewInteger(pos, 3)),
		ast.NewInteger(pos, 4))
	body := ast.NewAssign(pos, ast.NewInteger(pos, 0), expr)

	optimizer.Optimize(body)

	rhs := assignRHS(t, body)
	if rhs.NodeType != ast.Integer {
		t.Fatalf("expected folded Integer node, got %v", rhs.NodeType)
	}
	if got := rhs.Data.(ast.IntegerData).Value; got != 20 {
		t.Errorf("want 20, got %d", got)
	}
}

func TestOptimizeMixedArithmeticNotFolded(t *testing.T) {
	// 1 + 2.5 is not a same-typed literal pair: left unfolded.
	expr := ast.NewAdd(pos, ast.NewInteger(pos, 1), ast.NewReal(pos, 2.5))
	body := ast.NewAssign(pos, ast.NewInteger(pos, 0), expr)

	optimizer.Optimize(body)

	rhs := assignRHS(t, body)
	if rhs.NodeType != ast.Add {
		t.Fatalf("expected untouched Add node, got %v", rhs.NodeType)
	}
}

func TestOptimizeDivisionByFoldedZeroNotFolded(t *testing.T) {
	// 10 div (1 - 1): the zero must be the RIGHT operand of the div/mod
	// itself, after its own subtree has already been folded.
	rightZero := ast.NewSub(pos, ast.NewInteger(pos, 1), ast.NewInteger(pos, 1))
	expr := ast.NewIDiv(pos, ast.NewInteger(pos, 10), rightZero)
	body := ast.NewAssign(pos, ast.NewInteger(pos, 0), expr)

	optimizer.Optimize(body)

	rhs := assignRHS(t, body)
	if rhs.NodeType != ast.IDiv {
		t.Fatalf("expected IDiv left unfolded on a folded-zero divisor, got %v", rhs.NodeType)
	}
	d := rhs.Data.(ast.BinaryData)
	if d.Right.NodeType != ast.Integer || d.Right.Data.(ast.IntegerData).Value != 0 {
		t.Fatalf("expected the divisor subtree itself to still fold to 0, got %+v", d.Right)
	}
}

func TestOptimizeModByFoldedZeroNotFolded(t *testing.T) {
	rightZero := ast.NewMult(pos, ast.NewInteger(pos, 0), ast.NewInteger(pos, 5))
	expr := ast.NewMod(pos, ast.NewInteger(pos, 7), rightZero)
	body := ast.NewAssign(pos, ast.NewInteger(pos, 0), expr)

	optimizer.Optimize(body)

	rhs := assignRHS(t, body)
	if rhs.NodeType != ast.Mod {
		t.Fatalf("expected Mod left unfolded on a folded-zero divisor, got %v", rhs.NodeType)
	}
}

func TestOptimizeRealDivisionByFoldedZeroNotFolded(t *testing.T) {
	rightZero := ast.NewSub(pos, ast.NewReal(pos, 1.0), ast.NewReal(pos, 1.0))
	expr := ast.NewDivide(pos, ast.NewReal(pos, 10.0), rightZero)
	body := ast.NewAssign(pos, ast.NewInteger(pos, 0), expr)

	optimizer.Optimize(body)

	rhs := assignRHS(t, body)
	if rhs.NodeType != ast.Divide {
		t.Fatalf("expected Divide left unfolded on a folded-zero divisor, got %v", rhs.NodeType)
	}
}

func TestOptimizeAndOrFoldToBooleanInts(t *testing.T) {
	tests := []struct {
		name string
		expr *ast.Node
		want int64
	}{
		{"and-true", ast.NewAnd(pos, ast.NewInteger(pos, 1), ast.NewInteger(pos, 2)), 1},
		{"and-false", ast.NewAnd(pos, ast.NewInteger(pos, 0), ast.NewInteger(pos, 2)), 0},
		{"or-true", ast.NewOr(pos, ast.NewInteger(pos, 0), ast.NewInteger(pos, 2)), 1},
		{"or-false", ast.NewOr(pos, ast.NewInteger(pos, 0), ast.NewInteger(pos, 0)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ast.NewAssign(pos, ast.NewInteger(pos, 0), tt.expr)
			optimizer.Optimize(body)
			rhs := assignRHS(t, body)
			if rhs.NodeType != ast.Integer {
				t.Fatalf("expected folded Integer node, got %v", rhs.NodeType)
			}
			if got := rhs.Data.(ast.IntegerData).Value; got != tt.want {
				t.Errorf("want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOptimizeRecursesIntoControlFlow(t *testing.T) {
	// while (3 - 2) do result := (1 + 1)
	cond := ast.NewSub(pos, ast.NewInteger(pos, 3), ast.NewInteger(pos, 2))
	assign := ast.NewAssign(pos, ast.NewInteger(pos, 0), ast.NewAdd(pos, ast.NewInteger(pos, 1), ast.NewInteger(pos, 1)))
	whileBody := ast.NewStmtList(nil, assign)
	loop := ast.NewWhile(pos, cond, whileBody)

	optimizer.Optimize(loop)

	d := loop.Data.(ast.WhileData)
	if d.Cond.NodeType != ast.Integer {
		t.Fatalf("expected while condition folded, got %v", d.Cond.NodeType)
	}
	bodyData := d.Body.Data.(ast.StmtListData)
	rhs := assignRHS(t, bodyData.Last)
	if diff := cmp.Diff(int64(2), rhs.Data.(ast.IntegerData).Value); diff != "" {
		t.Errorf("loop body assign rhs mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeNilRootIsNoop(t *testing.T) {
	optimizer.Optimize(nil) // must not panic
}
