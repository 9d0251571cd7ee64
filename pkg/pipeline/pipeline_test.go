package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xplshn/pascbe/pkg/codegen"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/pipeline"
)

func generate(t *testing.T, filter string) string {
	t.Helper()
	cfg := config.New()
	var buf strings.Builder
	sink := diag.NewSink(&buf)

	path := filepath.Join(t.TempDir(), "out.s")
	out, err := codegen.NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	pipeline.Run(out, cfg, sink, filter, "test", nil)

	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(content)
}

func TestRunAllEmitsEveryUnitLabel(t *testing.T) {
	asm := generate(t, "all")
	for _, name := range []string{"fold_demo", "cast_demo", "shortcircuit_demo", "outer", "inner", "square", "array_demo", "no_return"} {
		if !strings.Contains(asm, "# "+name) {
			t.Errorf("expected a prologue comment for %q in the combined unit:\n%s", name, asm)
		}
	}
}

func TestRunFilterIsolatesOneUnit(t *testing.T) {
	asm := generate(t, "fold")
	if !strings.Contains(asm, "# fold_demo") {
		t.Fatalf("expected fold_demo's prologue:\n%s", asm)
	}
	if strings.Contains(asm, "# array_demo") {
		t.Errorf("filter=fold must not emit array_demo's body:\n%s", asm)
	}
}

func TestRunIsDeterministicAcrossIdenticalInputs(t *testing.T) {
	first := generate(t, "array")
	second := generate(t, "array")

	stripHeader := func(s string) string {
		lines := strings.Split(s, "\n")
		out := lines[:0]
		for _, l := range lines {
			if strings.HasPrefix(l, "# build-unit") || strings.HasPrefix(l, "# generated") {
				continue
			}
			out = append(out, l)
		}
		return strings.Join(out, "\n")
	}

	if stripHeader(first) != stripHeader(second) {
		t.Errorf("two runs of the same unit should emit identical assembly apart from the header stamp:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRunMissingReturnReportsExactlyOneDiagnostic(t *testing.T) {
	var buf strings.Builder
	sink := diag.NewSink(&buf)
	cfg := config.New()
	path := filepath.Join(t.TempDir(), "out.s")
	out, err := codegen.NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	pipeline.Run(out, cfg, sink, "missing-return", "test", nil)
	out.Close()

	if !sink.HadErrors() {
		t.Fatalf("expected the missing-return unit to report an error")
	}
	if got := strings.Count(buf.String(), "must return a value"); got != 1 {
		t.Errorf("expected exactly one missing-return diagnostic, got %d:\n%s", got, buf.String())
	}
}
