package match

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	untestedHeader = "Untested problems"
	unusedHeader   = "Unraised problems"
	indent         = "    "
	dataPrefix     = indent + "Data: "
)

// WriteReport writes a plain text description of every untested problem and
// every unused expectation. It writes nothing when the result is OK.
func (r Result) WriteReport(w io.Writer) error {
	return r.writeReport(w, false)
}

// WriteColorReport is WriteReport with colored section headers.
func (r Result) WriteColorReport(w io.Writer) error {
	return r.writeReport(w, true)
}

// Lines returns the report split into lines, for sinks such as t.Logf.
func (r Result) Lines() []string {
	var sb strings.Builder
	_ = r.writeReport(&sb, false)
	out := strings.Split(sb.String(), "\n")
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	return out
}

func (r Result) writeReport(w io.Writer, colored bool) error {
	rw := &reportWriter{w: w}

	if len(r.Untested) > 0 {
		rw.header(untestedHeader, newColor(colored, color.FgRed))
		for _, p := range r.Untested {
			rw.entry(p.SourceFile, p.SourceLine, p.Rule, p.Items)
		}
	}
	if len(r.Unused) > 0 {
		rw.header(unusedHeader, newColor(colored, color.FgYellow))
		for _, e := range r.Unused {
			rw.entry(e.File, e.Line, "", e.Items)
		}
	}
	return rw.err
}

func newColor(enabled bool, attr color.Attribute) *color.Color {
	c := color.New(attr, color.Bold)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// reportWriter remembers the first write error so callers check it once.
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) printf(format string, args ...any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}

func (rw *reportWriter) header(text string, c *color.Color) {
	if rw.err != nil {
		return
	}
	_, rw.err = c.Fprintln(rw.w, text)
}

func (rw *reportWriter) entry(file string, line int, rule string, items []any) {
	if file != "" {
		rw.printf("%sFile: %s\n", indent, file)
	}
	if line != 0 {
		rw.printf("%sLine: %d\n", indent, line)
	}
	if rule != "" {
		rw.printf("%sRule: %s\n", indent, rule)
	}
	if len(items) > 0 {
		rw.printf("%s%v\n", dataPrefix, items[0])
		pad := strings.Repeat(" ", len(dataPrefix))
		for _, item := range items[1:] {
			rw.printf("%s%v\n", pad, item)
		}
	}
	rw.printf("\n")
}

// Summary is a one line description of r, used by the CLI.
func (r Result) Summary() string {
	return fmt.Sprintf("%d matched, %d untested, %d unraised", len(r.Matched), len(r.Untested), len(r.Unused))
}
