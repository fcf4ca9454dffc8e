package regexinloop_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/ruletest/models"
	"github.com/SergeiSkv/ruletest/rules/regexinloop"
	"github.com/SergeiSkv/ruletest/ruletest"
)

func TestRegexInLoop(t *testing.T) {
	ruletest.Check(t, "regexinloop", regexinloop.Analyzer,
		models.Expect{File: "regexinloop.go", Line: 10, Items: []any{regexinloop.MessageFor("MustCompile")}},
		models.Expect{File: "regexinloop.go", Line: 22, Items: []any{regexinloop.MessageFor("Compile")}},
	)
}

func TestRegexInLoopComments(t *testing.T) {
	ruletest.CheckComments(t, "regexinloop", regexinloop.Analyzer)
}

func TestRegexInLoopProblems(t *testing.T) {
	pkg := ruletest.LoadPackage(t, "regexinloop")
	problems := ruletest.Run(t, pkg, regexinloop.Analyzer)
	require.Len(t, problems, 2)
	for _, p := range problems {
		require.Equal(t, "regexinloop", p.Rule)
		require.Equal(t, "regexinloop.go", p.SourceFile[len(p.SourceFile)-len("regexinloop.go"):])
	}
}
