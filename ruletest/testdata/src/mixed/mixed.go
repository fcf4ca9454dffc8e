package mixed

import (
	"os"
	"regexp"
)

func scan(paths []string) int {
	n := 0
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		defer f.Close() // ruletest:expect
		if regexp.MustCompile(`x`).MatchString(p) { // ruletest:expect
			n++
		}
	}
	return n
}
