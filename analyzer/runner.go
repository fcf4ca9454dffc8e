package analyzer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/checker"

	"github.com/SergeiSkv/ruletest/loader"
	"github.com/SergeiSkv/ruletest/models"
)

// ItemsFunc extracts the data items attached to a problem from a diagnostic.
type ItemsFunc func(a *analysis.Analyzer, d analysis.Diagnostic) []any

// MessageItems uses the diagnostic message as the only item.
func MessageItems(_ *analysis.Analyzer, d analysis.Diagnostic) []any {
	return []any{d.Message}
}

// CategoryItems uses the category (when set) followed by the message.
func CategoryItems(_ *analysis.Analyzer, d analysis.Diagnostic) []any {
	if d.Category == "" {
		return []any{d.Message}
	}
	return []any{d.Category, d.Message}
}

// NoItems attaches no items, so expectations match on position only.
func NoItems(*analysis.Analyzer, analysis.Diagnostic) []any {
	return nil
}

// Runner runs analyzers over a loaded fixture package.
type Runner struct {
	Analyzers []*analysis.Analyzer
	Package   *loader.Package
	// ItemsFunc defaults to MessageItems.
	ItemsFunc ItemsFunc
}

// NewRunner creates a runner for pkg.
func NewRunner(pkg *loader.Package, analyzers ...*analysis.Analyzer) *Runner {
	return &Runner{
		Analyzers: analyzers,
		Package:   pkg,
		ItemsFunc: MessageItems,
	}
}

// Problems runs every analyzer and returns the diagnostics of the root
// actions, sorted by position. Analyzer failures are joined into one error.
func (r *Runner) Problems(ctx context.Context) ([]models.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Package == nil {
		return nil, errors.New("runner has no package")
	}
	if len(r.Analyzers) == 0 {
		return nil, errors.New("runner has no analyzers")
	}
	if err := analysis.Validate(r.Analyzers); err != nil {
		return nil, fmt.Errorf("invalid analyzers: %w", err)
	}

	graph, err := checker.Analyze(r.Analyzers, r.Package.Packages, &checker.Options{})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", r.Package.Name, err)
	}

	itemsFn := r.ItemsFunc
	if itemsFn == nil {
		itemsFn = MessageItems
	}

	var (
		problems []models.Problem
		errs     []error
	)
	for _, act := range graph.Roots {
		if act.Err != nil {
			errs = append(errs, fmt.Errorf("%s on %s: %w", act.Analyzer.Name, act.Package.PkgPath, act.Err))
			continue
		}
		for _, d := range act.Diagnostics {
			pos := act.Package.Fset.Position(d.Pos)
			problems = append(problems, models.NewProblem(pos, act.Analyzer.Name, d.Message, itemsFn(act.Analyzer, d)...))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	SortProblems(problems)
	return problems, nil
}
