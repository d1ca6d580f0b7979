package retrieval

import (
	"fmt"
	"strings"
)

// Assemble builds the prompt context: an optional "Summary:" block followed
// by one "Excerpt i:" block per ranked chunk, separated by blank lines, cut
// at maxChars runes. maxChars <= 0 uses DefaultMaxContextChars.
func Assemble(summary string, ranked []string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	blocks := make([]string, 0, len(ranked)+1)
	if summary != "" {
		blocks = append(blocks, "Summary:\n"+summary)
	}
	for i, chunk := range ranked {
		blocks = append(blocks, fmt.Sprintf("Excerpt %d:\n%s", i+1, chunk))
	}
	return truncateRunes(strings.Join(blocks, "\n\n"), maxChars)
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
