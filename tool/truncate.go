package tool

import (
	"fmt"
	"strings"
)

// Limits bounds tool output size, enforced by Truncate.
type Limits struct {
	MaxOutputSize  int
	MaxOutputLines int
}

// Truncate enforces the truncation law: line count is checked first (if
// exceeded, keep the first MaxOutputLines lines and append a footer
// noting how many of the total were shown); the result is then checked
// against the byte budget (if still too large, lines are accumulated
// until the budget would be exceeded, with a byte-count footer instead).
// When neither limit is exceeded, Truncate is the identity on s.
func Truncate(s string, limits Limits) (string, bool) {
	truncated := false
	out := s

	lines := strings.Split(s, "\n")
	if limits.MaxOutputLines > 0 && len(lines) > limits.MaxOutputLines {
		kept := lines[:limits.MaxOutputLines]
		out = strings.Join(kept, "\n") +
			fmt.Sprintf("\n[Output truncated: %d lines shown of %d total]", limits.MaxOutputLines, len(lines))
		truncated = true
	}

	if limits.MaxOutputSize > 0 && len(out) > limits.MaxOutputSize {
		totalBytes := len(out)
		candidateLines := strings.Split(out, "\n")
		var kept []string
		size := 0
		for _, line := range candidateLines {
			lineSize := len(line) + 1 // +1 for the newline it costs when rejoined
			if size+lineSize > limits.MaxOutputSize {
				break
			}
			kept = append(kept, line)
			size += lineSize
		}
		shown := strings.Join(kept, "\n")
		out = shown +
			fmt.Sprintf("\n[Output truncated: %d bytes shown of %d total]", len(shown), totalBytes)
		truncated = true
	}

	return out, truncated
}
