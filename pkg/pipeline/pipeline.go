// Package pipeline wires the demo fixtures in pkg/demo through
// optimizer -> semantic -> codegen, the same three-stage run cmd/pascbe
// performs, factored out so cmd/pascgolden can drive identical units
// without duplicating the scenario wiring. There is still no lexer or
// parser here: spec.md places the front end out of scope, so every run
// starts from a fresh symbol table and AST built through pkg/demo's
// public constructors.
package pipeline

import (
	"github.com/goforj/godump"

	"github.com/xplshn/pascbe/pkg/codegen"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/demo"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/optimizer"
	"github.com/xplshn/pascbe/pkg/quad"
	"github.com/xplshn/pascbe/pkg/semantic"
	"github.com/xplshn/pascbe/pkg/symtab"
)

// Names lists every demo unit, in the order cmd/pascbe has always run
// them. "all" (accepted by Run's filter) is not itself a name here.
var Names = []string{"fold", "cast", "shortcircuit", "nested", "array", "missing-return"}

// Run builds a fresh symbol table and executes every unit whose name
// matches filter ("all" runs everything), writing one compilation unit's
// worth of assembly (header, each procedure/function body, trailing .data
// section) to out. dumpAST, if non-nil, is called with each scenario
// before codegen — cmd/pascbe wires it to godump.Dump; cmd/pascgolden
// leaves it nil. It returns the symbol table and semantic checker the run
// used, so callers can dump the table afterward.
func Run(out *codegen.Output, cfg *config.Config, sink *diag.Sink, filter string, sourceName string, dumpAST func(interface{})) (*symtab.Table, *semantic.Checker) {
	tab := symtab.New()
	checker := semantic.NewChecker(tab, sink, cfg)
	ctx := codegen.NewContext(tab, cfg, sink, out)
	ctx.WriteHeader(sourceName)

	run := func(name string, fn func()) {
		if filter == "all" || filter == name {
			fn()
		}
	}

	run("fold", func() {
		RunScenario(tab, checker, ctx, dumpAST, demo.PureIntFold(tab), nil)
	})
	run("cast", func() {
		RunScenario(tab, checker, ctx, dumpAST, demo.MixedArithmeticCast(tab), nil)
	})
	run("shortcircuit", func() {
		sc, expensive := demo.ShortCircuitAndZero(tab)
		flagSym := firstLocal(sc.Env)
		q := demo.ShortCircuitQuads(tab, expensive, flagSym)
		RunScenario(tab, checker, ctx, dumpAST, sc, q)
	})
	run("nested", func() {
		outer, inner, square := demo.NestedCall(tab)
		RunScenario(tab, checker, ctx, dumpAST, square, nil)
		RunScenario(tab, checker, ctx, dumpAST, inner, nil)
		RunScenario(tab, checker, ctx, dumpAST, outer, nil)
	})
	run("array", func() {
		RunScenario(tab, checker, ctx, dumpAST, demo.ArrayIndex(tab), nil)
	})
	run("missing-return", func() {
		RunScenario(tab, checker, ctx, dumpAST, demo.MissingReturn(tab), nil)
	})

	ctx.EmitDataSection()
	return tab, checker
}

// RunScenario optimizes and then type-checks a scenario's body, then generates
// assembly from q (a hand-authored quad list standing in for the
// out-of-scope front end's lowering pass) or, if q is nil, an empty body.
func RunScenario(tab *symtab.Table, checker *semantic.Checker, ctx *codegen.Context, dumpAST func(interface{}), sc demo.Scenario, q *quad.List) {
	prevEnv := tab.CurrentEnvironment()
	tab.SetCurrentEnvironment(sc.Env)
	optimizer.Optimize(sc.Body)
	checker.TypeCheck(sc.Env, sc.Body)
	tab.SetCurrentEnvironment(prevEnv)

	if dumpAST != nil {
		dumpAST(sc)
	}

	if q == nil {
		q = &quad.List{}
	}
	ctx.GenerateAssembler(q, sc.Env)
}

// firstLocal returns the symbol declared immediately after env's own
// entry — every demo scenario declares its one relevant local that way.
func firstLocal(env symtab.SymIndex) symtab.SymIndex {
	return env + 1
}

// DumpGodump adapts godump.Dump to the dumpAST callback signature Run
// expects, so cmd/pascbe can pass pipeline.DumpGodump instead of a
// throwaway closure.
func DumpGodump(v interface{}) {
	godump.Dump(v)
}
