package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIndex reads a zero-based index argument.
func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s index %q", name, s)
	}
	return n, nil
}

// parseAnswers reads a comma-separated list of option indexes, e.g. "1,0,2".
func parseAnswers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
