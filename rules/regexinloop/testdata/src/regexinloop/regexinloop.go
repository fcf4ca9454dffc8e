package regexinloop

import "regexp"

var word = regexp.MustCompile(`\w+`)

func countMatches(lines []string) int {
	n := 0
	for _, line := range lines {
		re := regexp.MustCompile(`^\d+`) // ruletest:expect "regexp.MustCompile called inside loop; compile once outside the loop"
		if re.MatchString(line) {
			n++
		}
	}
	return n
}

func tryPatterns(patterns []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for i := 0; i < len(patterns); i++ {
		// ruletest:expect-next-line "regexp.Compile called inside loop; compile once outside the loop"
		re, err := regexp.Compile(patterns[i])
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

func rangeOverMatches(s string) int {
	n := 0
	for range regexp.MustCompile(`a`).FindAllString(s, -1) {
		n++
	}
	return n
}

func reuse(lines []string) int {
	n := 0
	for _, line := range lines {
		if word.MatchString(line) {
			n++
		}
	}
	return n
}
