package models

import (
	"fmt"
	"go/token"
)

// Problem represents a single rule violation reported by an analysis run.
// Empty SourceFile and zero SourceLine mean the location is unknown, nil
// Items means the rule attached no data.
type Problem struct {
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	SourceLine int    `json:"source_line,omitempty" yaml:"source_line,omitempty"`
	Column     int    `json:"column,omitempty" yaml:"column,omitempty"`
	Rule       string `json:"rule,omitempty" yaml:"rule,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	Items      []any  `json:"items,omitempty" yaml:"items,omitempty"`
}

// NewProblem builds a problem located at pos.
func NewProblem(pos token.Position, rule, message string, items ...any) Problem {
	return Problem{
		SourceFile: pos.Filename,
		SourceLine: pos.Line,
		Column:     pos.Column,
		Rule:       rule,
		Message:    message,
		Items:      items,
	}
}

func (p Problem) String() string {
	loc := p.SourceFile
	if loc == "" {
		loc = "<unknown>"
	}
	if p.SourceLine != 0 {
		loc = fmt.Sprintf("%s:%d", loc, p.SourceLine)
	}
	if p.Rule == "" {
		return fmt.Sprintf("%s: %s", loc, p.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", loc, p.Rule, p.Message)
}
