package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/SergeiSkv/ruletest/analyzer"
	"github.com/SergeiSkv/ruletest/cache"
	"github.com/SergeiSkv/ruletest/expect"
	"github.com/SergeiSkv/ruletest/match"
	"github.com/SergeiSkv/ruletest/models"
	"github.com/SergeiSkv/ruletest/rules"
)

var errSuitesFailed = errors.New("some suites failed")

var suiteSuffixes = []string{".ruletest.yaml", ".ruletest.yml", ".ruletest.toml"}

// checkParams holds everything a check run needs.
type checkParams struct {
	targets  []string
	config   *Config
	fs       afero.Fs
	jsonOut  bool
	colored  bool
	jobs     int
	stdout   io.Writer
	strategy string // overrides config and suites when set
}

type suiteResult struct {
	Suite  *expect.Suite
	Result match.Result
	Err    error
}

func (r suiteResult) ok() bool {
	return r.Err == nil && r.Result.OK()
}

// runCheck finds the suites below targets, checks them in parallel and
// prints the outcome. It returns errSuitesFailed when any suite fails.
func runCheck(ctx context.Context, p checkParams) error {
	if p.config == nil {
		p.config = DefaultConfig()
	}
	if len(p.targets) == 0 {
		p.targets = []string{"."}
	}

	paths, err := findSuites(p.fs, p.targets, p.config.Paths.Exclude)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		slog.Warn("No suites found", "targets", strings.Join(p.targets, ","))
		return nil
	}

	results, err := checkSuites(ctx, p, paths)
	if err != nil {
		return err
	}

	if p.jsonOut {
		err = outputJSON(p.stdout, results)
	} else {
		err = outputHuman(p.stdout, results, p.colored)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.ok() {
			return errSuitesFailed
		}
	}
	return nil
}

func checkSuites(ctx context.Context, p checkParams, paths []string) ([]suiteResult, error) {
	jobs := p.jobs
	if jobs <= 0 {
		jobs = p.config.Output.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	reader := expect.NewReader(p.fs)
	fixtures := cache.New(len(paths), nil)
	results := make([]suiteResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			suite, err := reader.Read(path)
			if err != nil {
				results[i] = suiteResult{Suite: &expect.Suite{Name: path, Path: path}, Err: err}
				return nil
			}
			res, err := checkSuite(ctx, fixtures, suite, p.config, p.strategy)
			results[i] = suiteResult{Suite: suite, Result: res, Err: err}
			slog.Debug("Suite checked", "suite", suite.Name, "ok", results[i].ok())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := fixtures.Stats()
	slog.Debug("Fixture cache", "packages", stats.Items, "hits", stats.Hits, "misses", stats.Misses)
	return results, nil
}

// checkSuite loads the fixture of suite, runs its enabled rules and matches
// the problems against the suite expectations.
func checkSuite(ctx context.Context, fixtures *cache.PackageCache, suite *expect.Suite, cfg *Config, strategyOverride string) (match.Result, error) {
	var names []string
	for _, name := range suite.Rules {
		if cfg.RuleEnabled(name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return match.Result{}, fmt.Errorf("suite %s: every rule is disabled", suite.Name)
	}

	analyzers, err := rules.Lookup(names...)
	if err != nil {
		return match.Result{}, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	pkg, err := fixtures.Load(suite.FixtureDir(), suite.Package)
	if err != nil {
		return match.Result{}, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	runner := analyzer.NewRunner(pkg, analyzers...)
	runner.ItemsFunc = itemsFuncFor(suite.Items)
	problems, err := runner.Problems(ctx)
	if err != nil {
		return match.Result{}, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	expected := slices.Clone(suite.Expect)
	if suite.Comments {
		for _, p := range pkg.Packages {
			fromComments, err := expect.FromComments(p.Fset, p.Syntax)
			if err != nil {
				return match.Result{}, fmt.Errorf("suite %s: %w", suite.Name, err)
			}
			expected = append(expected, fromComments...)
		}
	}

	strategyName := suite.Strategy
	if strategyName == "" {
		strategyName = cfg.Match.Strategy
	}
	if strategyOverride != "" {
		strategyName = strategyOverride
	}
	strategy, err := match.ParseStrategy(strategyName)
	if err != nil {
		return match.Result{}, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	return match.Match(problems, expected, match.WithStrategy(strategy)), nil
}

func itemsFuncFor(mode string) analyzer.ItemsFunc {
	switch mode {
	case expect.ItemsCategory:
		return analyzer.CategoryItems
	case expect.ItemsNone:
		return analyzer.NoItems
	default:
		return analyzer.MessageItems
	}
}

// findSuites walks targets and returns every suite file, in walk order.
func findSuites(fs afero.Fs, targets, excludes []string) ([]string, error) {
	var paths []string
	for _, target := range targets {
		info, err := fs.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("path does not exist: %s: %w", target, err)
		}
		if !info.IsDir() {
			paths = append(paths, target)
			continue
		}

		err = afero.Walk(fs, target, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			skip, skipDir := shouldSkipPath(path, info, excludes)
			if skipDir {
				return filepath.SkipDir
			}
			if skip {
				return nil
			}
			if isSuiteFile(path, info) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", target, err)
		}
	}
	return paths, nil
}

// shouldSkipPath checks if a path should be skipped based on exclusion rules
func shouldSkipPath(path string, info os.FileInfo, excludes []string) (skip, skipDir bool) {
	cleanPath := filepath.Clean(path)
	base := filepath.Base(cleanPath)

	for _, exclude := range excludes {
		if exclude == "" {
			continue
		}
		cleanExclude := filepath.Clean(exclude)

		if base == exclude || cleanPath == cleanExclude ||
			strings.HasPrefix(cleanPath, cleanExclude+string(filepath.Separator)) ||
			strings.HasSuffix(cleanPath, string(filepath.Separator)+cleanExclude) ||
			strings.Contains(cleanPath, string(filepath.Separator)+cleanExclude+string(filepath.Separator)) {
			if info.IsDir() {
				return false, true
			}
			return true, false
		}
	}

	return false, false
}

func isSuiteFile(path string, info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range suiteSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// JSONOutput represents the JSON structure for results
type JSONOutput struct {
	Summary Summary     `json:"summary"`
	Suites  []JSONSuite `json:"suites"`
}

// Summary contains overall statistics
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONSuite is the outcome of one suite
type JSONSuite struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	OK       bool             `json:"ok"`
	Error    string           `json:"error,omitempty"`
	Matched  int              `json:"matched"`
	Untested []models.Problem `json:"untested,omitempty"`
	Unused   []models.Expect  `json:"unused,omitempty"`
}

func summarize(results []suiteResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.ok() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

func outputJSON(w io.Writer, results []suiteResult) error {
	out := JSONOutput{
		Summary: summarize(results),
		Suites:  make([]JSONSuite, 0, len(results)),
	}
	for _, r := range results {
		js := JSONSuite{
			Name:     r.Suite.Name,
			Path:     r.Suite.Path,
			OK:       r.ok(),
			Matched:  len(r.Result.Matched),
			Untested: r.Result.Untested,
			Unused:   r.Result.Unused,
		}
		if r.Err != nil {
			js.Error = r.Err.Error()
		} else if err := r.Result.Err(); err != nil {
			js.Error = err.Error()
		}
		out.Suites = append(out.Suites, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}

func outputHuman(w io.Writer, results []suiteResult, colored bool) error {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)
	if colored {
		pass.EnableColor()
		fail.EnableColor()
	} else {
		pass.DisableColor()
		fail.DisableColor()
	}

	for _, r := range results {
		var err error
		switch {
		case r.Err != nil:
			_, err = fail.Fprintf(w, "FAIL %s: %v\n", r.Suite.Name, r.Err)
		case r.Result.OK():
			_, err = pass.Fprintf(w, "ok   %s (%s)\n", r.Suite.Name, r.Result.Summary())
		default:
			if _, err = fail.Fprintf(w, "FAIL %s (%s)\n", r.Suite.Name, r.Result.Summary()); err == nil {
				if colored {
					err = r.Result.WriteColorReport(w)
				} else {
					err = r.Result.WriteReport(w)
				}
			}
		}
		if err != nil {
			return err
		}
	}

	s := summarize(results)
	_, err := fmt.Fprintf(w, "\nSummary: %d suites, %d passed, %d failed\n", s.Total, s.Passed, s.Failed)
	return err
}
