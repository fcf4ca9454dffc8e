package deferinloop_test

import (
	"testing"

	"github.com/SergeiSkv/ruletest/models"
	"github.com/SergeiSkv/ruletest/rules/deferinloop"
	"github.com/SergeiSkv/ruletest/ruletest"
)

func TestDeferInLoop(t *testing.T) {
	ruletest.Check(t, "deferinloop", deferinloop.Analyzer,
		models.Expect{File: "deferinloop.go", Line: 14, Items: []any{deferinloop.Message}},
		models.Expect{File: "deferinloop.go", Line: 22},
	)
}

func TestDeferInLoopComments(t *testing.T) {
	ruletest.CheckComments(t, "deferinloop", deferinloop.Analyzer)
}
