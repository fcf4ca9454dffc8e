// Package deferinloop reports defer statements executed once per loop
// iteration. Deferred calls only run when the function returns, so a defer in
// a loop body piles up calls and keeps resources open.
package deferinloop

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/SergeiSkv/ruletest/rules/ruleutil"
)

const Message = "defer inside loop runs only when the function returns"

var Analyzer = &analysis.Analyzer{
	Name:     "deferinloop",
	Doc:      "reports defer statements inside loop bodies",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.DeferStmt)(nil)}
	insp.WithStack(nodeFilter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		// A defer inside a closure belongs to the closure, not the loop.
		if ruleutil.InLoopBody(stack, true) {
			pass.Report(analysis.Diagnostic{
				Pos:      n.Pos(),
				End:      n.End(),
				Category: "performance",
				Message:  Message,
			})
		}
		return true
	})
	return nil, nil
}
