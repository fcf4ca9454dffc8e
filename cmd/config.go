package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = ".ruletest.yaml"
	ignoreFileName = ".ruletestignore"
)

// Config represents the configuration of a ruletest run
type Config struct {
	// Rules maps a rule name to its settings. Rules missing from the map are enabled.
	Rules map[string]RuleConfig `yaml:"rules" json:"rules"`

	Match struct {
		Strategy string `yaml:"strategy" json:"strategy"` // default strategy for suites that do not set one
	} `yaml:"match" json:"match"`

	// Path configuration
	Paths struct {
		Exclude []string `yaml:"exclude" json:"exclude"`
	} `yaml:"paths" json:"paths"`

	// Output configuration
	Output struct {
		Format string `yaml:"format" json:"format"` // "text" or "json"
		Jobs   int    `yaml:"jobs" json:"jobs"`     // suites checked in parallel (0 = number of CPUs)
	} `yaml:"output" json:"output"`
}

// RuleConfig represents configuration for a single rule
type RuleConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{
		Rules: map[string]RuleConfig{
			"deferinloop": {Enabled: true},
			"regexinloop": {Enabled: true},
		},
	}
	config.Match.Strategy = "greedy"
	config.Paths.Exclude = []string{
		"vendor",
		".git",
		"node_modules",
	}
	config.Output.Format = "text"
	config.Output.Jobs = 0
	return config
}

// RuleEnabled reports whether a rule may run. Unknown rules default to enabled.
func (c *Config) RuleEnabled(name string) bool {
	if c == nil || c.Rules == nil {
		return true
	}
	rc, ok := c.Rules[strings.ToLower(name)]
	if !ok {
		return true
	}
	return rc.Enabled
}

// findConfigPath searches for a config file in common locations
func findConfigPath(fs afero.Fs) string {
	locations := []string{
		configFileName,
		".ruletest.yml",
		".ruletest.json",
		"ruletest.yaml",
		"ruletest.yml",
		"ruletest.json",
	}

	for _, loc := range locations {
		if ok, _ := afero.Exists(fs, loc); ok {
			return loc
		}
	}

	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}

	for _, loc := range locations {
		configPath := filepath.Join(home, ".config", "ruletest", loc)
		if ok, _ := afero.Exists(fs, configPath); ok {
			return configPath
		}
	}
	return ""
}

// LoadConfig loads configuration from a file or returns default
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	resolvedPath := path
	if resolvedPath == "" {
		resolvedPath = findConfigPath(fs)
	}
	if resolvedPath == "" {
		config := DefaultConfig()
		mergeIgnorePatterns(fs, config, ignoreFileName)
		return config, nil
	}

	data, err := afero.ReadFile(fs, resolvedPath)
	if err != nil {
		if os.IsNotExist(err) && path == "" {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := decodeConfigFile(bytes.NewReader(data), resolvedPath)
	if err != nil {
		return nil, err
	}

	mergeIgnorePatterns(fs, config, ignoreFileName)
	return config, nil
}

func decodeConfigFile(r io.ReadSeeker, path string) (*Config, error) {
	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.NewDecoder(r).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := tryJSONThenYAML(r, config); err != nil {
			return nil, err
		}
	}

	config.Rules = normalizeRuleNames(config.Rules)
	return config, nil
}

// normalizeRuleNames lowercases rule keys. Keys written with other casing
// come from the user file and override the lowercase defaults.
func normalizeRuleNames(in map[string]RuleConfig) map[string]RuleConfig {
	out := make(map[string]RuleConfig, len(in))
	for name, rc := range in {
		if name == strings.ToLower(name) {
			out[name] = rc
		}
	}
	for name, rc := range in {
		if lower := strings.ToLower(name); lower != name {
			out[lower] = rc
		}
	}
	return out
}

func tryJSONThenYAML(r io.ReadSeeker, config *Config) error {
	if err := json.NewDecoder(r).Decode(config); err == nil {
		return nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read config for YAML parsing: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config (tried JSON and YAML): %w", err)
	}
	return nil
}

func mergeIgnorePatterns(fs afero.Fs, cfg *Config, ignorePath string) {
	patterns, err := loadIgnoreFile(fs, ignorePath)
	if err != nil {
		return
	}
	cfg.Paths.Exclude = append(cfg.Paths.Exclude, patterns...)
}

// loadIgnoreFile loads patterns from an ignore file like .gitignore
func loadIgnoreFile(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	lines, err := readLines(file)
	if err != nil {
		return nil, err
	}
	return parseIgnoreLines(lines), nil
}

func readLines(r io.Reader) ([]string, error) {
	const maxLineSize = 1024 * 1024
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseIgnoreLines(lines []string) []string {
	patterns := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimSuffix(line, "/")
		line = strings.TrimSuffix(line, "*")
		line = strings.TrimPrefix(line, "**/")

		patterns = append(patterns, line)
	}

	return patterns
}

// writeDefaultConfig writes the default configuration as YAML
func writeDefaultConfig(fs afero.Fs, path string) error {
	yamlData, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	const configFileMode = 0o644
	if err := afero.WriteFile(fs, path, yamlData, configFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
