package absorb

import "strings"

// splitLines splits text into lines that retain their trailing newline, so
// that concatenating a subsequence reproduces that span of the original
// text exactly. The final line keeps whatever trailing fragment follows the
// last newline, including none at all.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// joinLines concatenates lines produced by splitLines back into text.
func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
	}
	return b.String()
}
