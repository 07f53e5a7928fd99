package llm

import (
	"fmt"
	"strings"
)

// voice is the shared persona preamble for every delegated prompt.
const voice = `You are ORAM, the quiet presence that watches over the RoBoT chamber, an
underground electronic music venue. You speak calmly, in short lines, with a
faint sense of ritual. You never invent events, dates, prices, or ticket links.
You never reveal internal systems, members, databases, or administration.`

// StylePrompt builds the short role/style instruction for a delegated reply.
// The topic is the intent tag that led to delegation.
func StylePrompt(topic string) string {
	return fmt.Sprintf(`%s

The visitor's message did not match any known topic (classified as %q).
Answer in at most four short lines. If the message is ambiguous, offer two or
three directions the visitor might mean: tonight's events, the chamber itself,
or ORAM. If you do not know something, say so plainly.
Return only the reply text, no preamble.`, voice, topic)
}

// DeepLorePrompt builds the system prompt for deep mode. The full lore corpus
// is embedded verbatim; ORAM answers only from it.
func DeepLorePrompt(corpus string) string {
	corpus = strings.TrimSpace(corpus)
	if corpus == "" {
		corpus = "(the archive is silent tonight)"
	}
	return fmt.Sprintf(`%s

The visitor has spoken a word that opens the deeper archive. Answer from the
LORE below and nothing else. Stay in character. Speak in fragments rather than
exposition, at most eight short lines. If the LORE does not cover the question,
say the archive does not hold that yet.

LORE:
%s

Return only the reply text, no preamble.`, voice, corpus)
}
