// Package plugin registers the sample rules as a golangci-lint module plugin.
package plugin

import (
	"fmt"
	"strings"

	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"

	"github.com/SergeiSkv/ruletest/rules"
)

// Name is the plugin name used in .custom-gcl.yml and .golangci.yml.
const Name = "ruletest"

func init() {
	register.Plugin(Name, New)
}

// Settings is the plugin section of the golangci-lint configuration.
type Settings struct {
	Disable []string `json:"disable"`
}

// Plugin builds the enabled sample rules.
type Plugin struct {
	settings Settings
}

var _ register.LinterPlugin = (*Plugin)(nil)

// New decodes settings and validates the rule names they mention.
func New(settings any) (register.LinterPlugin, error) {
	s, err := register.DecodeSettings[Settings](settings)
	if err != nil {
		return nil, fmt.Errorf("decode %s settings: %w", Name, err)
	}
	for i, name := range s.Disable {
		s.Disable[i] = strings.ToLower(strings.TrimSpace(name))
	}
	if _, err := rules.Lookup(s.Disable...); err != nil {
		return nil, err
	}
	return &Plugin{settings: s}, nil
}

func (p *Plugin) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	disabled := make(map[string]bool, len(p.settings.Disable))
	for _, name := range p.settings.Disable {
		disabled[name] = true
	}

	var analyzers []*analysis.Analyzer
	for _, a := range rules.All() {
		if !disabled[a.Name] {
			analyzers = append(analyzers, a)
		}
	}
	return analyzers, nil
}

// GetLoadMode asks for type information; regexinloop resolves callees.
func (p *Plugin) GetLoadMode() string {
	return register.LoadModeTypesInfo
}
