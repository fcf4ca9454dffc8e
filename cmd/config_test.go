package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const formatText = "text"

func TestDefaultConfigEnablesRules(t *testing.T) {
	cfg := DefaultConfig()

	require.True(t, cfg.RuleEnabled("deferinloop"))
	require.True(t, cfg.RuleEnabled("regexinloop"))
	require.Equal(t, formatText, cfg.Output.Format)
	require.Equal(t, "greedy", cfg.Match.Strategy)
}

func TestRuleEnabled(t *testing.T) {
	cfg := &Config{Rules: map[string]RuleConfig{"deferinloop": {Enabled: false}}}

	require.False(t, cfg.RuleEnabled("DeferInLoop"))
	require.True(t, cfg.RuleEnabled("nonexistent"), "unknown rules default to enabled")

	var nilCfg *Config
	require.True(t, nilCfg.RuleEnabled("deferinloop"))
}

func TestLoadConfigRuleNamesIgnoreCase(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"yaml", ".ruletest.yaml", "rules:\n  DeferInLoop:\n    enabled: false\n"},
		{"json", ".ruletest.json", `{"rules": {"DEFERINLOOP": {"enabled": false}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644))

			cfg, err := LoadConfig(fs, tt.path)
			require.NoError(t, err)
			require.False(t, cfg.RuleEnabled("deferinloop"))
			require.True(t, cfg.RuleEnabled("regexinloop"))
			require.NotContains(t, cfg.Rules, "DeferInLoop")
		})
	}
}

func TestParseIgnoreLines(t *testing.T) {
	lines := []string{"# comment", "vendor/", "**/generated", "", "node_modules/*"}
	require.Equal(t, []string{"vendor", "generated", "node_modules/"}, parseIgnoreLines(lines))
}

func TestLoadConfigDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg, err := LoadConfig(fs, "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Paths.Exclude, cfg.Paths.Exclude)
}

func TestLoadConfigYAMLAndIgnoreFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `rules:
  regexinloop:
    enabled: false
match:
  strategy: maximal
paths:
  exclude: [vendor]
output:
  format: json
  jobs: 2
`
	require.NoError(t, afero.WriteFile(fs, configFileName, []byte(content), 0o644))
	require.NoError(t, afero.WriteFile(fs, ignoreFileName, []byte("# fixtures\nbroken/\n"), 0o644))

	cfg, err := LoadConfig(fs, "")
	require.NoError(t, err)
	require.False(t, cfg.RuleEnabled("regexinloop"))
	require.True(t, cfg.RuleEnabled("deferinloop"))
	require.Equal(t, "maximal", cfg.Match.Strategy)
	require.Equal(t, []string{"vendor", "broken"}, cfg.Paths.Exclude)
	require.Equal(t, "json", cfg.Output.Format)
	require.Equal(t, 2, cfg.Output.Jobs)
}

func TestLoadConfigJSONAndUnknownExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cfg.json", []byte(`{"output":{"format":"json"}}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "cfg.conf", []byte("output:\n  jobs: 3\n"), 0o644))

	cfg, err := LoadConfig(fs, "cfg.json")
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Output.Format)

	cfg, err = LoadConfig(fs, "cfg.conf")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Output.Jobs)
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadConfig(fs, "missing.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("rules: [unclosed"), 0o644))
	_, err = LoadConfig(fs, "bad.yaml")
	require.ErrorContains(t, err, "failed to parse YAML config")
}

func TestWriteDefaultConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeDefaultConfig(fs, configFileName))

	cfg, err := LoadConfig(fs, configFileName)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}
