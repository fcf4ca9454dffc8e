package ruletest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/ruletest/match"
	"github.com/SergeiSkv/ruletest/models"
)

func TestApplyTests(t *testing.T) {
	foo := models.Problem{SourceFile: "/src/Foo.go", SourceLine: 10, Items: []any{"X"}}

	tests := []struct {
		name      string
		problems  []models.Problem
		expected  []models.Expect
		wantError string
		wantLogs  []string
	}{
		{
			name:     "exact match",
			problems: []models.Problem{foo},
			expected: []models.Expect{{File: "Foo.go", Line: 10, Items: []any{"X"}}},
		},
		{
			name: "nothing expected nothing reported",
		},
		{
			name:      "nothing expected but reported",
			problems:  []models.Problem{{SourceFile: "/src/Foo.go", SourceLine: 10}},
			wantError: msgNotTested,
			wantLogs:  []string{"Untested problems", "    File: /src/Foo.go", "    Line: 10", ""},
		},
		{
			name:      "expected but nothing reported",
			expected:  []models.Expect{{File: "Foo.go"}},
			wantError: fmt.Sprintf(msgNoProblems, 1),
			wantLogs:  []string{"Unraised problems", "    File: Foo.go", ""},
		},
		{
			name:      "one expectation for two problems",
			problems:  []models.Problem{foo, foo},
			expected:  []models.Expect{{File: "Foo.go"}},
			wantError: msgMoreReports,
		},
		{
			name:      "more expectations than problems",
			problems:  []models.Problem{foo},
			expected:  []models.Expect{{File: "Foo.go"}, {File: "Bar.go"}},
			wantError: msgMoreTests,
			wantLogs:  []string{"Unraised problems", "    File: Bar.go", ""},
		},
		{
			name:      "both kinds of mismatch are logged",
			problems:  []models.Problem{foo},
			expected:  []models.Expect{{File: "Bar.go"}},
			wantError: msgMoreReports,
			wantLogs: []string{
				"Untested problems", "    File: /src/Foo.go", "    Line: 10", "    Data: X", "",
				"Unraised problems", "    File: Bar.go", "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(func(rt TestingT) {
				ApplyTests(rt, tt.problems, tt.expected...)
			})

			if tt.wantError == "" {
				require.False(t, r.failed)
				require.Empty(t, r.errors)
				require.Empty(t, r.logs)
				return
			}
			require.True(t, r.failed)
			require.Equal(t, []string{tt.wantError}, r.errors)
			if tt.wantLogs != nil {
				require.Equal(t, tt.wantLogs, r.logs)
			}
		})
	}
}

func TestApplyTestsWithStrategy(t *testing.T) {
	problems := []models.Problem{
		{SourceFile: "/a/foo.go"},
		{SourceFile: "/a/foo.go", SourceLine: 7},
	}
	expected := []models.Expect{
		{File: "foo.go", Line: 7},
		{File: "foo.go", Line: 9},
	}

	r := run(func(rt TestingT) {
		ApplyTestsWith(rt, problems, expected)
	})
	require.True(t, r.failed)

	r = run(func(rt TestingT) {
		ApplyTestsWith(rt, problems, expected, WithStrategy(match.Maximal))
	})
	require.False(t, r.failed)
}
