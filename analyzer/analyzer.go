// Package analyzer turns the output of analysis rules into models.Problem
// values for the matcher.
package analyzer

import (
	"cmp"
	"context"
	"slices"

	"github.com/SergeiSkv/ruletest/models"
)

// Source produces the problems a rule reported.
type Source interface {
	Problems(ctx context.Context) ([]models.Problem, error)
}

// Static is a fixed list of problems. It lets the matcher be exercised
// without running any rule.
type Static []models.Problem

func (s Static) Problems(ctx context.Context) ([]models.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s), nil
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]models.Problem, error)

func (f SourceFunc) Problems(ctx context.Context) ([]models.Problem, error) {
	return f(ctx)
}

// Collect gathers problems from several sources in order.
func Collect(ctx context.Context, sources ...Source) ([]models.Problem, error) {
	var all []models.Problem
	for _, src := range sources {
		problems, err := src.Problems(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, problems...)
	}
	return all, nil
}

// SortProblems orders problems by file, line, column and rule so repeated
// runs iterate in the same order.
func SortProblems(problems []models.Problem) {
	slices.SortStableFunc(problems, func(a, b models.Problem) int {
		return cmp.Or(
			cmp.Compare(a.SourceFile, b.SourceFile),
			cmp.Compare(a.SourceLine, b.SourceLine),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}
