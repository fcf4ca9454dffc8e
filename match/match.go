// Package match pairs reported problems with expected problems one to one.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/SergeiSkv/ruletest/models"
)

var (
	ErrUntested = errors.New("more problems reported than tests defined")
	ErrUnused   = errors.New("more tests defined than problems reported")
)

// Strategy selects how problems are paired with expectations.
type Strategy uint8

const (
	// Greedy walks problems in order and lets each one consume the first
	// compatible expectation left in the pool.
	Greedy Strategy = iota
	// Maximal computes a maximum bipartite matching, so it succeeds whenever
	// a perfect pairing exists.
	Maximal
)

func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "greedy"
	case Maximal:
		return "maximal"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy converts a config value into a Strategy. Empty means Greedy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "greedy":
		return Greedy, nil
	case "maximal":
		return Maximal, nil
	default:
		return Greedy, fmt.Errorf("unknown match strategy %q: must be 'greedy' or 'maximal'", s)
	}
}

// Pair is one problem together with the expectation it consumed.
type Pair struct {
	Problem      models.Problem
	Expect       models.Expect
	ProblemIndex int
	ExpectIndex  int
}

// Result partitions the inputs of a Match call.
type Result struct {
	Matched  []Pair
	Untested []models.Problem
	Unused   []models.Expect
	// Reported is the number of problems passed in.
	Reported int
}

// OK reports whether every problem and every expectation were paired.
func (r Result) OK() bool {
	return len(r.Untested) == 0 && len(r.Unused) == 0
}

// Err returns ErrUntested or ErrUnused (in that order of precedence), or nil.
func (r Result) Err() error {
	if len(r.Untested) > 0 {
		return fmt.Errorf("%w: %d untested of %d reported", ErrUntested, len(r.Untested), r.Reported)
	}
	if len(r.Unused) > 0 {
		return fmt.Errorf("%w: %d expected problems not raised", ErrUnused, len(r.Unused))
	}
	return nil
}

type options struct {
	strategy Strategy
}

// Option configures Match.
type Option func(*options)

// WithStrategy overrides the default Greedy strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// Match pairs problems with expected. With no expectations every problem is
// untested.
func Match(problems []models.Problem, expected []models.Expect, opts ...Option) Result {
	o := options{strategy: Greedy}
	for _, opt := range opts {
		opt(&o)
	}

	var problemTo []int
	switch o.strategy {
	case Maximal:
		problemTo = maximal(problems, expected)
	default:
		problemTo = greedy(problems, expected)
	}

	res := Result{Reported: len(problems)}
	used := make([]bool, len(expected))
	for i, p := range problems {
		j := problemTo[i]
		if j < 0 {
			res.Untested = append(res.Untested, p)
			continue
		}
		used[j] = true
		res.Matched = append(res.Matched, Pair{
			Problem:      p,
			Expect:       expected[j],
			ProblemIndex: i,
			ExpectIndex:  j,
		})
	}
	for j, e := range expected {
		if !used[j] {
			res.Unused = append(res.Unused, e)
		}
	}
	return res
}

// greedy returns, for each problem, the index of the expectation it consumed or -1.
func greedy(problems []models.Problem, expected []models.Expect) []int {
	problemTo := make([]int, len(problems))
	used := make([]bool, len(expected))
	for i, p := range problems {
		problemTo[i] = -1
		for j, e := range expected {
			if !used[j] && Matches(e, p) {
				used[j] = true
				problemTo[i] = j
				break
			}
		}
	}
	return problemTo
}

// maximal runs Kuhn's augmenting path algorithm. Candidates are tried in
// declaration order so unambiguous inputs pair exactly as greedy would.
func maximal(problems []models.Problem, expected []models.Expect) []int {
	adj := make([][]int, len(problems))
	for i, p := range problems {
		for j, e := range expected {
			if Matches(e, p) {
				adj[i] = append(adj[i], j)
			}
		}
	}

	expectTo := make([]int, len(expected))
	for j := range expectTo {
		expectTo[j] = -1
	}

	var visited []bool
	var augment func(i int) bool
	augment = func(i int) bool {
		for _, j := range adj[i] {
			if visited[j] {
				continue
			}
			visited[j] = true
			if expectTo[j] < 0 || augment(expectTo[j]) {
				expectTo[j] = i
				return true
			}
		}
		return false
	}

	for i := range problems {
		visited = make([]bool, len(expected))
		augment(i)
	}

	problemTo := make([]int, len(problems))
	for i := range problemTo {
		problemTo[i] = -1
	}
	for j, i := range expectTo {
		if i >= 0 {
			problemTo[i] = j
		}
	}
	return problemTo
}

// Matches reports whether problem p satisfies expectation e. Each of the
// file, line and items clauses is skipped when either side leaves it unset.
func Matches(e models.Expect, p models.Problem) bool {
	return fileMatches(e.File, p.SourceFile) &&
		lineMatches(e.Line, p.SourceLine) &&
		itemsMatch(e.Items, p.Items)
}

// fileMatches compares a bare file name (or trailing path) against a full
// path, ignoring case.
func fileMatches(want, got string) bool {
	if want == "" || got == "" {
		return true
	}
	w, g := strings.ToLower(want), strings.ToLower(got)
	return g == w || strings.HasSuffix(g, "/"+w) || strings.HasSuffix(g, `\`+w)
}

func lineMatches(want, got int) bool {
	return want == 0 || got == 0 || want == got
}

func itemsMatch(want, got []any) bool {
	if want == nil || got == nil {
		return true
	}
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if !assert.ObjectsAreEqual(want[i], got[i]) {
			return false
		}
	}
	return true
}
