// Package intent maps a raw message to exactly one intent tag.
//
// Classification is a fixed, ordered chain of predicates. The first match
// wins, so the order of rules below is part of the contract: deep-lore
// triggers outrank everything, and every topic rule is checked before the
// delegated fallback.
package intent

import (
	"strings"
)

// Intent is the classified category of a user message.
type Intent int

const (
	Empty Intent = iota
	Greeting
	Events
	Tickets
	Schedule
	Hours
	Genre
	Identity
	About
	Lore
	DeepLore
	Blocked
	Delegated
)

var names = [...]string{
	Empty:     "empty",
	Greeting:  "greeting",
	Events:    "events",
	Tickets:   "tickets",
	Schedule:  "schedule",
	Hours:     "hours",
	Genre:     "genre",
	Identity:  "identity",
	About:     "about",
	Lore:      "lore",
	DeepLore:  "deep_lore",
	Blocked:   "blocked",
	Delegated: "delegated",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(names) {
		return "unknown"
	}
	return names[i]
}

// All returns every intent tag in declaration order.
func All() []Intent {
	out := make([]Intent, len(names))
	for i := range names {
		out[i] = Intent(i)
	}
	return out
}

// Parse maps a tag string back to its Intent.
func Parse(s string) (Intent, bool) {
	for i, n := range names {
		if n == s {
			return Intent(i), true
		}
	}
	return Empty, false
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

type rule struct {
	intent Intent
	match  func(t string) bool
}

func exact(words ...string) func(string) bool {
	return func(t string) bool {
		for _, w := range words {
			if t == w {
				return true
			}
		}
		return false
	}
}

func contains(words ...string) func(string) bool {
	return func(t string) bool {
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		return false
	}
}

// topicRules run after the deep-trigger check, in this order.
var topicRules = []rule{
	{Greeting, exact("hi", "hello", "hey", "hiya", "yo")},
	{Events, contains("event", "what's on", "whats on", "weekend", "lineup", "line-up", "gig")},
	{Tickets, contains("ticket")},
	{Schedule, contains("schedule", "when is", "when's", "what date", "which date")},
	{Hours, contains("open", "hour", "time")},
	{Genre, contains("genre", "music", "sound like", "style")},
	{Identity, contains("who are you", "what are you")},
	{About, contains("about", "venue", "where is", "location", "address")},
	{Lore, contains("story", "origin", "lore")},
	{Blocked, contains("member", "database", "admin")},
}

// Classifier assigns intents. It is immutable and safe for concurrent use.
type Classifier struct {
	triggers []string
}

// New creates a Classifier. Triggers are deep-lore keywords; blank entries
// are dropped and matching is case-insensitive.
func New(triggers []string) *Classifier {
	c := &Classifier{}
	for _, tr := range triggers {
		tr = strings.ToLower(strings.TrimSpace(tr))
		if tr != "" {
			c.triggers = append(c.triggers, tr)
		}
	}
	return c
}

// Classify returns exactly one Intent for msg. It never fails.
func (c *Classifier) Classify(msg string) Intent {
	t := Normalize(msg)
	if t == "" {
		return Empty
	}
	for _, tr := range c.triggers {
		if strings.Contains(t, tr) {
			return DeepLore
		}
	}
	for _, r := range topicRules {
		if r.match(t) {
			return r.intent
		}
	}
	return Delegated
}

// Normalize trims and lowercases a message the way Classify sees it.
func Normalize(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}
