package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Level controls how much ornament surrounds a canned reply.
type Level int

const (
	Minimal Level = iota // text as-is
	Light                // a pause line before
	Art                  // a creative line before
	High                 // creative lines before and after
	Auto                 // chosen from the text itself
)

var levelNames = [...]string{"minimal", "light", "art", "high", "auto"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// autoShort is the rune count under which Auto prefixes an ellipsis.
const autoShort = 40

var pauses = []string{"…", "…", "", ""}

type expresser struct {
	library []string
	intn    func(n int) int
}

func (x expresser) pick(from []string) string {
	if len(from) == 0 {
		return ""
	}
	return from[x.intn(len(from))]
}

func (x expresser) apply(text string, lvl Level) string {
	switch lvl {
	case Minimal:
		return text
	case Light:
		return joinLines(x.pick(pauses), text)
	case Art:
		return joinLines(x.pick(x.library), text)
	case High:
		return joinLines(x.pick(x.library), text, x.pick(x.library))
	default:
		if strings.Contains(strings.ToLower(text), "signal") {
			return "┈ " + text + " ┈"
		}
		if utf8.RuneCountInString(text) < autoShort {
			return "… " + text
		}
		return text
	}
}

// joinLines joins non-empty lines with newlines.
func joinLines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
