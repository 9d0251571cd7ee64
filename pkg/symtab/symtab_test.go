package symtab_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/pascbe/pkg/symtab"
)

func TestNewSeedsBuiltinTypes(t *testing.T) {
	tab := symtab.New()
	for _, idx := range []symtab.SymIndex{tab.IntegerType, tab.RealType, tab.VoidType} {
		if idx == symtab.Undef {
			t.Fatalf("builtin type handle must not be Undef")
		}
		if tab.GetSymbol(idx).Kind != symtab.KindNameType {
			t.Errorf("builtin type %d should be KindNameType", idx)
		}
	}
	if !tab.IsNumeric(tab.IntegerType) || !tab.IsNumeric(tab.RealType) {
		t.Errorf("IntegerType and RealType must both be numeric")
	}
	if tab.IsNumeric(tab.VoidType) {
		t.Errorf("VoidType must not be numeric")
	}
}

func TestGetSymbolPanicsOnUndef(t *testing.T) {
	tab := symtab.New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected GetSymbol(Undef) to panic")
		}
	}()
	tab.GetSymbol(symtab.Undef)
}

func TestParamsReturnsDeclarationOrder(t *testing.T) {
	tab := symtab.New()
	fn := tab.NewEntry(symtab.Entry{Kind: symtab.KindFunc, ID: "f"})

	a := tab.NewEntry(symtab.Entry{Kind: symtab.KindParam, ID: "a", Offset: 0, Type: tab.IntegerType})
	b := tab.NewEntry(symtab.Entry{Kind: symtab.KindParam, ID: "b", Offset: 8, Type: tab.IntegerType, PrevParam: a})
	c := tab.NewEntry(symtab.Entry{Kind: symtab.KindParam, ID: "c", Offset: 16, Type: tab.RealType, PrevParam: b})
	tab.GetSymbol(fn).LastParam = c

	got := tab.Params(fn)
	want := []symtab.SymIndex{a, b, c}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Params() order mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsEmptyForNoArgProc(t *testing.T) {
	tab := symtab.New()
	proc := tab.NewEntry(symtab.Entry{Kind: symtab.KindProc, ID: "p"})
	if got := tab.Params(proc); len(got) != 0 {
		t.Errorf("expected no params, got %v", got)
	}
}

func TestAlignedARSize(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {1, 8}, {8, 8}, {9, 16}, {16, 16}, {17, 24},
	}
	for _, tt := range tests {
		if got := symtab.AlignedARSize(tt.in); got != tt.want {
			t.Errorf("AlignedARSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPoolLookupInterning(t *testing.T) {
	tab := symtab.New()
	h1 := tab.PoolLookup("foo")
	h2 := tab.PoolLookup("foo")
	if h1 != h2 {
		t.Errorf("repeated PoolLookup of the same string must return the same key")
	}
	s, ok := tab.LookupInterned(h1)
	if !ok || s != "foo" {
		t.Errorf("LookupInterned(%d) = (%q, %v), want (\"foo\", true)", h1, s, ok)
	}
	if _, ok := tab.LookupInterned(0xdeadbeef); ok {
		t.Errorf("LookupInterned on an unknown key should report ok=false")
	}
}

func TestGetNextLabelMonotonic(t *testing.T) {
	tab := symtab.New()
	l1 := tab.GetNextLabel()
	l2 := tab.GetNextLabel()
	if l2 <= l1 {
		t.Errorf("expected strictly increasing labels, got %d then %d", l1, l2)
	}
}
