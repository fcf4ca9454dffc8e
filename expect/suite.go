// Package expect reads expected problems from suite files and from
// directives in fixture comments.
package expect

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/SergeiSkv/ruletest/match"
	"github.com/SergeiSkv/ruletest/models"
)

// Items modes select how diagnostics are turned into problem items.
const (
	ItemsMessage  = "message"
	ItemsCategory = "category"
	ItemsNone     = "none"
)

var ErrInvalidSuite = errors.New("invalid suite")

// Suite is one expectation file: a fixture package, the rules to run on it
// and the problems they must report.
type Suite struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
	// Dir is where the fixture package lives, relative to the suite file.
	// Empty means the suite file's own directory.
	Dir      string          `yaml:"dir,omitempty" toml:"dir,omitempty"`
	Package  string          `yaml:"package" toml:"package"`
	Rules    []string        `yaml:"rules" toml:"rules"`
	Strategy string          `yaml:"strategy,omitempty" toml:"strategy,omitempty"`
	Items    string          `yaml:"items,omitempty" toml:"items,omitempty"`
	Comments bool            `yaml:"comments,omitempty" toml:"comments,omitempty"`
	Expect   []models.Expect `yaml:"expect" toml:"expect"`

	// Path is the file the suite was read from.
	Path string `yaml:"-" toml:"-"`
}

// FixtureDir resolves Dir against the suite file location.
func (s *Suite) FixtureDir() string {
	base := filepath.Dir(s.Path)
	if s.Dir == "" {
		return base
	}
	if filepath.IsAbs(s.Dir) {
		return s.Dir
	}
	return filepath.Join(base, s.Dir)
}

// MatchStrategy parses the Strategy field.
func (s *Suite) MatchStrategy() (match.Strategy, error) {
	return match.ParseStrategy(s.Strategy)
}

// Validate checks the fields a run needs.
func (s *Suite) Validate() error {
	if s.Package == "" {
		return fmt.Errorf("%w %s: package is required", ErrInvalidSuite, s.Path)
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("%w %s: at least one rule is required", ErrInvalidSuite, s.Path)
	}
	if _, err := s.MatchStrategy(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidSuite, s.Path, err)
	}
	switch s.Items {
	case "", ItemsMessage, ItemsCategory, ItemsNone:
	default:
		return fmt.Errorf("%w %s: unknown items mode %q", ErrInvalidSuite, s.Path, s.Items)
	}
	return nil
}

// Reader reads suites through an afero filesystem.
type Reader struct {
	fs afero.Fs
}

func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// Read parses the suite at path. Files ending in .toml are TOML, anything
// else is YAML.
func (r *Reader) Read(path string) (*Suite, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	suite := &Suite{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(suite); err != nil {
			return nil, fmt.Errorf("parse suite %s: %w", path, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(suite); err != nil {
			return nil, fmt.Errorf("parse suite %s: %w", path, err)
		}
	}

	suite.Path = path
	if suite.Name == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		suite.Name = strings.TrimSuffix(base, ".ruletest")
	}
	for i := range suite.Expect {
		suite.Expect[i].Items = normalizeItems(suite.Expect[i].Items)
	}

	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

// Write stores s as YAML.
func (r *Reader) Write(path string, s *Suite) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal suite: %w", err)
	}
	const fileMode = 0o644
	if err := afero.WriteFile(r.fs, path, data, fileMode); err != nil {
		return fmt.Errorf("write suite %s: %w", path, err)
	}
	return nil
}

// normalizeItems maps TOML's int64 integers to int so they compare equal to
// items produced in Go code and in YAML.
func normalizeItems(items []any) []any {
	for i, v := range items {
		if n, ok := v.(int64); ok {
			items[i] = int(n)
		}
	}
	return items
}
