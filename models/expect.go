package models

import (
	"fmt"
	"strings"
)

// Expect describes one expected problem. Every field is optional: an empty
// File, a zero Line or nil Items match anything. A non-nil empty Items slice
// requires the problem to carry no items at all.
type Expect struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Line  int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	Items []any  `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
}

// MarshalYAML keeps a non-nil empty Items as "items: []" so a saved
// descriptor still requires zero items when it is read back.
func (e Expect) MarshalYAML() (any, error) {
	if e.Items == nil || len(e.Items) > 0 {
		type plain Expect
		return plain(e), nil
	}
	return struct {
		File  string `yaml:"file,omitempty"`
		Line  int    `yaml:"line,omitempty"`
		Items []any  `yaml:"items"`
	}{e.File, e.Line, e.Items}, nil
}

func (e Expect) String() string {
	var sb strings.Builder
	if e.File == "" {
		sb.WriteString("*")
	} else {
		sb.WriteString(e.File)
	}
	if e.Line != 0 {
		sb.WriteString(fmt.Sprintf(":%d", e.Line))
	}
	if e.Items != nil {
		sb.WriteString(fmt.Sprintf(" %v", e.Items))
	}
	return sb.String()
}
