// Command pascbe drives the back end (optimizer, semantic analyzer, code
// generator) end to end. There is no lexer or parser in this repository —
// spec.md places the front end out of scope — so pascbe exercises the
// pipeline against a small fixed set of demo programs built directly
// through the symtab/ast public constructors (pkg/demo, wired together by
// pkg/pipeline). The flag-parsing and dump-on-request shape follows the
// teacher's cmd/gbc/main.go, cut down to the one CLI surface this back end
// actually has.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goforj/godump"

	"github.com/xplshn/pascbe/pkg/codegen"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diagcli"
	"github.com/xplshn/pascbe/pkg/pipeline"
)

func main() {
	var (
		outPath     = flag.String("o", "demo.s", "output assembly path")
		trace       = flag.Bool("trace", false, "emit per-quad trace comments")
		warnAsError = flag.Bool("warn-as-error", false, "escalate semantic warnings to errors")
		dumpAST     = flag.Bool("dump-ast", false, "dump each scenario's AST before codegen")
		dumpSym     = flag.Bool("dump-sym", false, "dump the symbol table after construction")
		scenario    = flag.String("scenario", "all", "which demo scenario to run: all, fold, cast, shortcircuit, nested, array, missing-return")
	)
	flag.Parse()

	cfg := config.New()
	cfg.Trace = *trace
	cfg.WarnAsError = *warnAsError

	sink := diagcli.NewStderrSink()

	out, err := codegen.NewOutput(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pascbe: %v\n", err)
		os.Exit(1)
	}

	var dump func(interface{})
	if *dumpAST {
		dump = pipeline.DumpGodump
	}

	tab, _ := pipeline.Run(out, cfg, sink, *scenario, "demo", dump)

	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "pascbe: %v\n", err)
		os.Exit(1)
	}

	if *dumpSym {
		godump.Dump(tab)
	}

	if sink.HadErrors() {
		os.Exit(1)
	}
}
