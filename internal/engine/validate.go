package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxReplyChars caps delegated output (~500 tokens).
const maxReplyChars = 2000

// cleanReply trims provider output, strips a wrapping pair of quotes,
// collapses runs of blank lines, and caps the length.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = unquote(s)

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	s = strings.TrimSpace(strings.Join(out, "\n"))

	if utf8.RuneCountInString(s) > maxReplyChars {
		s = truncateClean(s, maxReplyChars)
	}
	return s
}

func unquote(s string) string {
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}} {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			if !strings.Contains(inner, q[0]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

// truncateClean truncates s to maxRunes, cutting at the last word boundary
// to avoid mid-word breaks.
func truncateClean(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	// Back up to last space
	truncated := string(runes[:maxRunes])
	if idx := strings.LastIndexFunc(truncated, unicode.IsSpace); idx > len(truncated)-200 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated) + " …"
}
