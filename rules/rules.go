// Package rules is the registry of sample rules shipped with ruletest.
package rules

import (
	"fmt"
	"sort"

	"golang.org/x/tools/go/analysis"

	"github.com/SergeiSkv/ruletest/rules/deferinloop"
	"github.com/SergeiSkv/ruletest/rules/regexinloop"
)

// All returns every registered rule, sorted by name.
func All() []*analysis.Analyzer {
	all := []*analysis.Analyzer{
		deferinloop.Analyzer,
		regexinloop.Analyzer,
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Lookup resolves rule names. Unknown names are an error.
func Lookup(names ...string) ([]*analysis.Analyzer, error) {
	byName := make(map[string]*analysis.Analyzer, len(names))
	for _, a := range All() {
		byName[a.Name] = a
	}

	out := make([]*analysis.Analyzer, 0, len(names))
	for _, name := range names {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
		out = append(out, a)
	}
	return out, nil
}
