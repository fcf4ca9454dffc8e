package ruletest

import (
	"github.com/SergeiSkv/ruletest/match"
	"github.com/SergeiSkv/ruletest/models"
)

const (
	msgNotTested   = "Problems reported that are not tested."
	msgNoProblems  = "No problems reported, but there should be %d."
	msgMoreReports = "More problems reported than tests defined. See the test log for details."
	msgMoreTests   = "More tests defined than problems reported. See the test log for details."
)

type config struct {
	strategy match.Strategy
}

// Option configures ApplyTestsWith.
type Option func(*config)

// WithStrategy selects the matching strategy. The default is match.Greedy.
func WithStrategy(s match.Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// ApplyTests checks that problems and expected pair up one to one.
//
// Without expectations no problem may be reported at all. Otherwise every
// problem must consume exactly one expectation and every expectation must be
// consumed. The full report of untested problems and unraised expectations is
// logged before the test fails, so a single run shows both kinds of mismatch.
func ApplyTests(t TestingT, problems []models.Problem, expected ...models.Expect) {
	t.Helper()
	ApplyTestsWith(t, problems, expected)
}

// ApplyTestsWith is ApplyTests with options.
func ApplyTestsWith(t TestingT, problems []models.Problem, expected []models.Expect, opts ...Option) {
	t.Helper()

	cfg := config{strategy: match.Greedy}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := match.Match(problems, expected, match.WithStrategy(cfg.strategy))
	if res.OK() {
		return
	}

	for _, line := range res.Lines() {
		t.Logf("%s", line)
	}

	switch {
	case len(expected) == 0:
		t.Errorf(msgNotTested)
	case len(res.Untested) > 0:
		t.Errorf(msgMoreReports)
	case len(problems) == 0:
		t.Errorf(msgNoProblems, len(expected))
	default:
		t.Errorf(msgMoreTests)
	}
	t.FailNow()
}
