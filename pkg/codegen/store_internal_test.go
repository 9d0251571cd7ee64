package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/symtab"
)

// TestStoreScratchRegisterAvoidsClobberingSource exercises store() directly
// (unexported, hence this in-package test) with src == RCX: the reference
// computes the destination address into the same register holding the
// value about to be stored, clobbering it before the mov; this port must
// pick a different scratch register whenever src is RCX.
func TestStoreScratchRegisterAvoidsClobberingSource(t *testing.T) {
	tab := symtab.New()
	v := tab.NewEntry(symtab.Entry{Kind: symtab.KindVar, ID: "v", Level: 1, Offset: 0, Type: tab.IntegerType})

	cfg := config.New()
	var buf strings.Builder
	sink := diag.NewSink(&buf)
	path := filepath.Join(t.TempDir(), "out.s")
	out, err := NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	ctx := NewContext(tab, cfg, sink, out)

	ctx.store(RCX, v)
	out.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "rcx, [rbp") {
		t.Fatalf("store(RCX, ...) must not compute the destination address into RCX itself:\n%s", content)
	}
	if !strings.Contains(content, "rax, [rbp") {
		t.Errorf("expected store(RCX, ...) to compute its address into the RAX scratch register:\n%s", content)
	}
	if !strings.Contains(content, "[rax-16], rcx") {
		t.Errorf("expected the final store to write rcx's original value through the rax-addressed slot:\n%s", content)
	}
}
