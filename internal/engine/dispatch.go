package engine

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/booking"
	"github.com/jamesinreallife/oram-public/internal/intent"
	"github.com/jamesinreallife/oram-public/internal/llm"
)

const (
	greetingText = "Hello.\nI’m here. Ask me anything."
	hoursText    = "RoBoT usually opens around 8PM.\nBut nights develop their own rhythm."
	identityText = "I go by ORAM.\nI watch the system and help those who wander in."
	aboutText    = "RoBoT is a chamber for electronic music, built underground and kept dim.\nThe exact way in travels with your ticket."
	loreMenuText = "⊹ A deeper thread stirs …\n" +
		"• The First Witness\n" +
		"• The Chamber\n" +
		"• The Awakening\n" +
		"• The Reason Behind It All\n" +
		"Just name one."
	ambiguityText = "I’m here—holding the quiet of the system.\n" +
		"If you meant tonight’s events, ORAM can look.\n" +
		"Or if you meant ORAM himself… I can answer that too.\n" +
		"Which direction did you intend?"
	noEventsText = "Nothing is confirmed yet.\nThe signal is quiet for now."
)

var generalResponses = []string{
	"I hear you.\nLet me sit with that for a moment …\nTell me more about what you're reaching for.",
	"I’m listening.\nSometimes a question is a signal without shape.\nGive me a hint.",
	"What you’re asking feels open—like several paths at once.\nChoose one and I’ll follow.",
	"It’s alright if the words aren’t clear.\nSpeak from whatever angle you can.",
}

// replyTemplates render over the configured event list. Output is
// right-trimmed before expression.
var replyTemplates = template.Must(template.New("replies").Parse(`
{{define "events"}}┈ Upcoming Signal ┈
{{range .}}{{.Artist}} — {{.Date}}
{{end}}{{end}}
{{define "tickets"}}Here’s the vector you need:
{{if eq (len .) 1}}{{(index . 0).TicketURL}}{{else}}{{range .}}{{.Artist}}: {{.TicketURL}}
{{end}}{{end}}{{end}}
{{define "schedule"}}Here's what's confirmed:
{{range .}}{{.Artist}} — {{.Date}}
{{end}}{{end}}
{{define "genre"}}The chamber leans electronic.
{{range .}}{{.Artist}} brings {{or .Genre "something unnamed"}}.
{{end}}{{end}}
`))

// bookingIntents fire a booking-interest record when dispatched.
var bookingIntents = map[intent.Intent]bool{
	intent.Events:  true,
	intent.Tickets: true,
}

// dispatch maps an intent to its reply text. Every tag in intent.All has a
// case; reaching default is a programming error.
func (e *Engine) dispatch(ctx context.Context, it intent.Intent, msg string) (string, error) {
	if bookingIntents[it] {
		e.emitBooking(it, msg)
	}

	switch it {
	case intent.Empty:
		return MsgEmpty, nil
	case intent.Greeting:
		return e.express.apply(greetingText, Light), nil
	case intent.Events:
		return e.render("events", Minimal)
	case intent.Tickets:
		return e.render("tickets", Art)
	case intent.Schedule:
		return e.render("schedule", Minimal)
	case intent.Hours:
		return e.express.apply(hoursText, Minimal), nil
	case intent.Genre:
		return e.render("genre", Light)
	case intent.Identity:
		return e.express.apply(identityText, Light), nil
	case intent.About:
		return e.express.apply(aboutText, Minimal), nil
	case intent.Lore:
		return e.express.apply(loreMenuText, High), nil
	case intent.DeepLore:
		if e.delegate == nil {
			return e.express.apply(loreMenuText, High), nil
		}
		return e.delegate.Ask(ctx, llm.DeepLorePrompt(e.lore.Corpus()), msg), nil
	case intent.Blocked:
		return MsgBlocked, nil
	case intent.Delegated:
		if e.delegate == nil {
			return e.offlineReply(msg), nil
		}
		return e.delegate.Ask(ctx, llm.StylePrompt(it.String()), msg), nil
	default:
		return "", fmt.Errorf("no handler for intent %v", it)
	}
}

func (e *Engine) render(name string, lvl Level) (string, error) {
	if len(e.events) == 0 {
		return e.express.apply(noEventsText, Minimal), nil
	}
	var b strings.Builder
	if err := replyTemplates.ExecuteTemplate(&b, name, e.events); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return e.express.apply(strings.TrimRight(b.String(), "\n"), lvl), nil
}

// offlineReply answers delegated intents without a provider.
func (e *Engine) offlineReply(msg string) string {
	if strings.Contains(intent.Normalize(msg), "happening") {
		return e.express.apply(ambiguityText, Light)
	}
	n := e.general.Add(1) - 1
	return e.express.apply(generalResponses[n%uint64(len(generalResponses))], Auto)
}

// emitBooking records interest for the first confirmed event. A panic in
// the emitter is logged and never reaches the reply.
func (e *Engine) emitBooking(it intent.Intent, msg string) {
	if e.emitter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("booking emit panicked", zap.Any("panic", r), zap.Stringer("intent", it))
		}
	}()
	var show booking.Show
	if len(e.events) > 0 {
		show = booking.Show{Artist: e.events[0].Artist, Date: e.events[0].Date}
	}
	e.emitter.Emit(it.String(), strings.TrimSpace(msg), show)
}
