// Package lore loads ORAM's static narrative text: the ordered corpus
// fragments, the deep-lore trigger keywords and the creative library.
// Everything is read once at startup and never mutated afterwards.
package lore

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Fragment is one named piece of the corpus.
type Fragment struct {
	Name string
	Text string
}

// Store is the read-only lore loaded at startup.
type Store struct {
	fragments []Fragment
	triggers  []string
	library   []string
	missing   []string
}

// Files names the files to read from the lore filesystem.
type Files struct {
	Fragments []string
	Triggers  string
	Library   string
}

// fallbackLibrary is used when no creative library is present.
var fallbackLibrary = []string{
	"…",
	"⊹",
	"◦",
	"I’m here.",
	"ORAM considers.",
	"Tell me more—if you want.",
}

// Load reads lore from fsys. A missing file yields empty content for that
// entry; only unexpected read errors are returned.
func Load(fsys fs.FS, files Files) (*Store, error) {
	s := &Store{}

	for _, name := range files.Fragments {
		text, ok, err := readOptional(fsys, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.missing = append(s.missing, name)
		}
		s.fragments = append(s.fragments, Fragment{
			Name: fragmentName(name),
			Text: strings.TrimSpace(text),
		})
	}

	if files.Triggers != "" {
		text, ok, err := readOptional(fsys, files.Triggers)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.missing = append(s.missing, files.Triggers)
		}
		s.triggers = ParseLines(text)
	}

	if files.Library != "" {
		text, ok, err := readOptional(fsys, files.Library)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.missing = append(s.missing, files.Library)
		}
		s.library = ParseLines(text)
	}
	if len(s.library) == 0 {
		s.library = append([]string(nil), fallbackLibrary...)
	}

	return s, nil
}

func readOptional(fsys fs.FS, name string) (string, bool, error) {
	if fsys == nil {
		return "", false, nil
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read lore %s: %w", name, err)
	}
	return string(data), true, nil
}

// fragmentName turns "core_myth.txt" into "core myth".
func fragmentName(file string) string {
	name := file
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".txt")
	return strings.ReplaceAll(name, "_", " ")
}

// ParseLines splits a keyword or library file into entries. Blank lines
// and lines starting with '#' are ignored.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Corpus concatenates the non-empty fragments in order, each under a
// header with its name.
func (s *Store) Corpus() string {
	var b strings.Builder
	for _, f := range s.fragments {
		if f.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n%s", strings.ToUpper(f.Name), f.Text)
	}
	return b.String()
}

// Fragments returns a copy of the fragments in corpus order.
func (s *Store) Fragments() []Fragment {
	return append([]Fragment(nil), s.fragments...)
}

// Triggers returns the deep-lore keywords.
func (s *Store) Triggers() []string {
	return append([]string(nil), s.triggers...)
}

// Library returns the creative library lines.
func (s *Store) Library() []string {
	return append([]string(nil), s.library...)
}

// Missing lists the files that were absent at load time.
func (s *Store) Missing() []string {
	return append([]string(nil), s.missing...)
}
