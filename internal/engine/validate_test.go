package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanReply(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{`"quoted reply"`, "quoted reply"},
		{"“curly quoted”", "curly quoted"},
		{`"one" and "two"`, `"one" and "two"`},
		{"a\n\n\n\nb", "a\n\nb"},
		{"a  \r\nb\t", "a\nb"},
		{"", ""},
		{"   \n  ", ""},
	}

	for _, tt := range tests {
		if got := cleanReply(tt.input); got != tt.want {
			t.Errorf("cleanReply(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanReplyCaps(t *testing.T) {
	long := strings.Repeat("signal ", 600)
	got := cleanReply(long)
	if n := utf8.RuneCountInString(got); n > maxReplyChars+2 {
		t.Errorf("length = %d, want <= %d", n, maxReplyChars+2)
	}
	if !strings.HasSuffix(got, " …") {
		t.Errorf("truncated reply should end with ellipsis: %q", got[len(got)-20:])
	}
	if strings.Contains(got, "signa …") {
		t.Error("truncation cut mid-word")
	}
}

func TestTruncateCleanMultibyte(t *testing.T) {
	s := strings.Repeat("┈", 50)
	got := truncateClean(s, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if truncateClean("short", 10) != "short" {
		t.Error("short strings should pass through")
	}
}
