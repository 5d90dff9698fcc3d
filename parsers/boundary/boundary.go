// Package boundary holds line helpers shared by the declaration parsers.
package boundary

import (
	"slices"
	"strings"
)

// Normalize sorts starts, drops duplicates and anything outside [0, lineCount).
func Normalize(starts []int, lineCount int) []int {
	out := make([]int, 0, len(starts))
	for _, s := range starts {
		if s >= 0 && s < lineCount {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// AttachComments moves every start up over the comment lines directly above
// it, so a declaration keeps its doc comment. A start never moves past the
// declaration before it.
func AttachComments(lines []string, starts []int, prefixes ...string) []int {
	out := make([]int, len(starts))
	floor := 0
	for i, s := range starts {
		j := s
		for j-1 >= floor && IsComment(lines[j-1], prefixes...) {
			j--
		}
		out[i] = j
		floor = s + 1
	}
	return Normalize(out, len(lines))
}

func IsComment(line string, prefixes ...string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// CountLines returns the number of lines strings.Split(code, "\n") would produce.
func CountLines(code string) int {
	return strings.Count(code, "\n") + 1
}
