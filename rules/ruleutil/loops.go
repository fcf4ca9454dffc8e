// Package ruleutil holds AST helpers shared by the sample rules.
package ruleutil

import "go/ast"

// InLoopBody reports whether n, whose ancestors are stack (outermost first,
// n itself last), runs once per iteration of an enclosing loop. Range
// expressions and for-loop init statements run once and do not count.
// The search stops at the enclosing function declaration, and also at a
// function literal when stopAtFuncLit is set.
func InLoopBody(stack []ast.Node, stopAtFuncLit bool) bool {
	if len(stack) == 0 {
		return false
	}
	n := stack[len(stack)-1]
	for i := len(stack) - 2; i >= 0; i-- {
		switch s := stack[i].(type) {
		case *ast.FuncDecl:
			return false
		case *ast.FuncLit:
			if stopAtFuncLit {
				return false
			}
		case *ast.ForStmt:
			if s.Init != nil && contains(s.Init, n) {
				continue
			}
			return true
		case *ast.RangeStmt:
			if s.Body != nil && contains(s.Body, n) {
				return true
			}
		}
	}
	return false
}

func contains(outer, inner ast.Node) bool {
	return outer.Pos() <= inner.Pos() && inner.End() <= outer.End()
}
