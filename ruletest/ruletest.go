// Package ruletest is a test helper for analysis rules. It loads a fixture
// package, runs rules over it and checks that the reported problems match the
// expected ones one to one, logging every mismatch before failing the test.
//
// A typical test:
//
//	func TestDeferInLoop(t *testing.T) {
//		ruletest.Check(t, "deferinloop", deferinloop.Analyzer,
//			models.Expect{File: "deferinloop.go", Line: 14},
//			models.Expect{File: "deferinloop.go", Line: 22},
//		)
//	}
package ruletest

import (
	"context"
	"errors"
	"path/filepath"

	"golang.org/x/tools/go/analysis"

	"github.com/SergeiSkv/ruletest/analyzer"
	"github.com/SergeiSkv/ruletest/expect"
	"github.com/SergeiSkv/ruletest/loader"
	"github.com/SergeiSkv/ruletest/models"
)

// TestingT is the subset of testing.TB the helpers use.
type TestingT interface {
	Helper()
	Logf(format string, args ...any)
	Errorf(format string, args ...any)
	FailNow()
}

// FixtureDir returns the directory fixtures are loaded from by default,
// testdata/src below the package under test.
func FixtureDir() string {
	return filepath.Join(loader.BaseDir(), "testdata", "src")
}

// LoadPackage loads the fixture name from FixtureDir.
func LoadPackage(t TestingT, name string) *loader.Package {
	t.Helper()
	return LoadPackageFrom(t, FixtureDir(), name)
}

// LoadPackageFrom loads the fixture name from dir and fails the test if it
// cannot be loaded with full type information.
func LoadPackageFrom(t TestingT, dir, name string) *loader.Package {
	t.Helper()
	pkg, err := loader.Load(dir, name)
	switch {
	case errors.Is(err, loader.ErrNoTypeInfo):
		t.Logf("%v", err)
		t.Errorf("Cannot load type information of package %s in directory %s", name, dir)
		t.FailNow()
	case err != nil:
		t.Logf("%v", err)
		t.Errorf("Cannot load package %s in directory %s", name, dir)
		t.FailNow()
	}
	return pkg
}

// Run runs analyzers over pkg with the default item extraction.
func Run(t TestingT, pkg *loader.Package, analyzers ...*analysis.Analyzer) []models.Problem {
	t.Helper()
	return Problems(t, analyzer.NewRunner(pkg, analyzers...))
}

// Problems collects the problems of src and fails the test on error.
func Problems(t TestingT, src analyzer.Source) []models.Problem {
	t.Helper()
	problems, err := src.Problems(context.Background())
	if err != nil {
		t.Errorf("Running rules failed: %v", err)
		t.FailNow()
	}
	return problems
}

// Check loads the fixture name, runs a over it and applies expected.
func Check(t TestingT, name string, a *analysis.Analyzer, expected ...models.Expect) {
	t.Helper()
	pkg := LoadPackage(t, name)
	ApplyTests(t, Run(t, pkg, a), expected...)
}

// CheckComments is Check with the expectations taken from ruletest:expect
// directives in the fixture sources.
func CheckComments(t TestingT, name string, a *analysis.Analyzer, opts ...Option) {
	t.Helper()
	pkg := LoadPackage(t, name)
	ApplyTestsWith(t, Run(t, pkg, a), CommentExpectations(t, pkg), opts...)
}

// CommentExpectations reads the ruletest:expect directives of pkg.
func CommentExpectations(t TestingT, pkg *loader.Package) []models.Expect {
	t.Helper()
	var expected []models.Expect
	for _, p := range pkg.Packages {
		e, err := expect.FromComments(p.Fset, p.Syntax)
		if err != nil {
			t.Errorf("Cannot read expectations of package %s: %v", pkg.Name, err)
			t.FailNow()
		}
		expected = append(expected, e...)
	}
	return expected
}
