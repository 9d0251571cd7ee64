package codegen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xplshn/pascbe/pkg/codegen"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/demo"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/quad"
	"github.com/xplshn/pascbe/pkg/symtab"
)

func generate(t *testing.T, tab *symtab.Table, fn func(ctx *codegen.Context)) string {
	t.Helper()
	cfg := config.New()
	var buf strings.Builder
	sink := diag.NewSink(&buf)

	path := filepath.Join(t.TempDir(), "out.s")
	out, err := codegen.NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	ctx := codegen.NewContext(tab, cfg, sink, out)
	fn(ctx)
	ctx.EmitDataSection()
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(content)
}

func TestPrologueCopiesDisplayForEachLevel(t *testing.T) {
	tab := symtab.New()
	env := tab.NewEntry(symtab.Entry{Kind: symtab.KindProc, ID: "inner", Level: 2, ARSize: 8, LabelNr: tab.GetNextLabel()})

	asm := generate(t, tab, func(ctx *codegen.Context) {
		ctx.Prologue(env)
		ctx.Epilogue(env)
	})

	// Two display entries copied (level 2) plus the frame's own push.
	if got := strings.Count(asm, "push\t[rbp"); got != 2 {
		t.Errorf("expected 2 display-entry pushes for a level-2 frame, got %d\n%s", got, asm)
	}
	if !strings.Contains(asm, "sub\trsp, 8") {
		t.Errorf("expected locals reservation for ar_size=8\n%s", asm)
	}
	if !strings.Contains(asm, "leave") || !strings.Contains(asm, "ret") {
		t.Errorf("expected leave/ret epilogue\n%s", asm)
	}
}

func TestFloatConstantsMaterializeIntoDataSection(t *testing.T) {
	// fld cannot take a raw immediate operand; real constants must be
	// materialized into a .data slot instead, deduplicated by bit pattern.
	tab := symtab.New()
	c1 := tab.NewEntry(symtab.Entry{Kind: symtab.KindConst, ID: "c1", Type: tab.RealType, Const: symtab.ConstValue{RVal: 2.5}})
	c2 := tab.NewEntry(symtab.Entry{Kind: symtab.KindConst, ID: "c2", Type: tab.RealType, Const: symtab.ConstValue{RVal: 2.5}})
	x := tab.NewEntry(symtab.Entry{Kind: symtab.KindVar, ID: "x", Level: 1, Offset: 0, Type: tab.RealType})
	env := tab.NewEntry(symtab.Entry{Kind: symtab.KindProc, ID: "p", Level: 1, ARSize: 8, LabelNr: tab.GetNextLabel()})

	asm := generate(t, tab, func(ctx *codegen.Context) {
		tab.SetCurrentEnvironment(env)
		q := &quad.List{}
		q.Append(quad.Quad{Op: quad.OpRPlus, Sym1: c1, Sym2: c2, Sym3: x})
		ctx.GenerateAssembler(q, env)
	})

	if !strings.Contains(asm, "section .data") {
		t.Fatalf("expected a .data section for interned float literals:\n%s", asm)
	}
	if got := strings.Count(asm, "dq\t2.5"); got != 1 {
		t.Errorf("expected exactly one deduplicated .data slot for 2.5, got %d:\n%s", got, asm)
	}
	if strings.Contains(asm, "fld\tqword ptr [2.5]") {
		t.Errorf("fld must reference a label, never a raw literal:\n%s", asm)
	}
}

func TestShortCircuitAndEvaluatesCallUnconditionally(t *testing.T) {
	tab := symtab.New()
	sc, expensive := demo.ShortCircuitAndZero(tab)
	flag := sc.Env + 1

	asm := generate(t, tab, func(ctx *codegen.Context) {
		tab.SetCurrentEnvironment(sc.Env)
		q := demo.ShortCircuitQuads(tab, expensive, flag)
		ctx.GenerateAssembler(q, sc.Env)
	})

	if !strings.Contains(asm, "call\tL") {
		t.Errorf("expected the call to 'expensive' to be emitted unconditionally:\n%s", asm)
	}
}

func TestTraceEmitsPerQuadComments(t *testing.T) {
	tab := symtab.New()
	env := tab.NewEntry(symtab.Entry{Kind: symtab.KindProc, ID: "p", Level: 1, ARSize: 0, LabelNr: tab.GetNextLabel()})

	cfg := config.New()
	cfg.Trace = true
	var buf strings.Builder
	sink := diag.NewSink(&buf)
	path := filepath.Join(t.TempDir(), "out.s")
	out, err := codegen.NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	ctx := codegen.NewContext(tab, cfg, sink, out)
	tab.SetCurrentEnvironment(env)
	q := &quad.List{}
	q.Append(quad.Quad{Op: quad.OpNop})
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a nop quad reaching expand() to be fatal")
		}
		out.Close()
		content, _ := os.ReadFile(path)
		if !strings.Contains(string(content), "QUAD 1:") {
			t.Errorf("expected a trace comment before the fatal nop:\n%s", content)
		}
	}()
	ctx.GenerateAssembler(q, env)
}
