package expect

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/SergeiSkv/ruletest/models"
)

const (
	DirectiveLine     = "ruletest:expect"
	DirectiveNextLine = "ruletest:expect-next-line"
)

// FromComments collects expectations declared in comments:
//
//	defer f.Close() // ruletest:expect "defer inside loop"
//	// ruletest:expect-next-line
//	defer mu.Unlock()
//
// Quoted arguments become string items, bare integers become int items and
// any other bare word is a string item. A directive without arguments
// matches any items.
func FromComments(fset *token.FileSet, files []*ast.File) ([]models.Expect, error) {
	var out []models.Expect
	for _, file := range files {
		for _, cg := range file.Comments {
			for _, c := range cg.List {
				e, ok, err := parseComment(fset, c)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, e)
				}
			}
		}
	}
	return out, nil
}

func parseComment(fset *token.FileSet, c *ast.Comment) (models.Expect, bool, error) {
	text := extractCommentText(c.Text)

	var directive string
	switch {
	case hasDirective(text, DirectiveNextLine):
		directive = DirectiveNextLine
	case hasDirective(text, DirectiveLine):
		directive = DirectiveLine
	default:
		return models.Expect{}, false, nil
	}

	pos := fset.Position(c.Pos())
	line := pos.Line
	if directive == DirectiveNextLine {
		line++
	}

	items, err := parseItems(strings.TrimSpace(text[len(directive):]))
	if err != nil {
		return models.Expect{}, false, fmt.Errorf("%s: %w", pos, err)
	}

	return models.Expect{
		File:  filepath.Base(pos.Filename),
		Line:  line,
		Items: items,
	}, true, nil
}

func extractCommentText(text string) string {
	if strings.HasPrefix(text, "//") {
		text = strings.TrimPrefix(text, "//")
	} else if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}
	return strings.TrimSpace(text)
}

func hasDirective(text, directive string) bool {
	if !strings.HasPrefix(text, directive) {
		return false
	}
	rest := text[len(directive):]
	return rest == "" || unicode.IsSpace(rune(rest[0]))
}

func parseItems(s string) ([]any, error) {
	var items []any
	for s != "" {
		switch s[0] {
		case '"', '`':
			q, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("malformed quoted item in %q", s)
			}
			v, err := strconv.Unquote(q)
			if err != nil {
				return nil, fmt.Errorf("malformed quoted item %s: %w", q, err)
			}
			items = append(items, v)
			s = s[len(q):]
		default:
			end := strings.IndexFunc(s, unicode.IsSpace)
			if end < 0 {
				end = len(s)
			}
			word := s[:end]
			if n, err := strconv.Atoi(word); err == nil {
				items = append(items, n)
			} else {
				items = append(items, word)
			}
			s = s[end:]
		}
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	}
	return items, nil
}
