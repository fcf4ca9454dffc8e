// Package regexinloop reports regular expressions compiled inside loops.
package regexinloop

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/SergeiSkv/ruletest/rules/ruleutil"
)

const pkgRegexp = "regexp"

var compileFuncs = map[string]bool{
	"Compile":          true,
	"MustCompile":      true,
	"CompilePOSIX":     true,
	"MustCompilePOSIX": true,
}

var Analyzer = &analysis.Analyzer{
	Name:     "regexinloop",
	Doc:      "reports regexp compilation inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// MessageFor is the diagnostic message for a call to regexp.<fn>.
func MessageFor(fn string) string {
	return fmt.Sprintf("regexp.%s called inside loop; compile once outside the loop", fn)
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.CallExpr)(nil)}
	insp.WithStack(nodeFilter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := n.(*ast.CallExpr)
		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Path() != pkgRegexp || !compileFuncs[fn.Name()] {
			return true
		}
		// Closures created in a loop body still compile once per iteration.
		if ruleutil.InLoopBody(stack, false) {
			pass.Report(analysis.Diagnostic{
				Pos:      call.Pos(),
				End:      call.End(),
				Category: "performance",
				Message:  MessageFor(fn.Name()),
			})
		}
		return true
	})
	return nil, nil
}
