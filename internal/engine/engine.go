package engine

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/booking"
	"github.com/jamesinreallife/oram-public/internal/intent"
	"github.com/jamesinreallife/oram-public/internal/lore"
)

// Fixed user-facing strings. None of them leak internal detail.
const (
	MsgEmpty       = "Try speaking again—I’m listening."
	MsgTooLong     = "That’s more signal than I can hold at once.\nTry something shorter."
	MsgRateLimited = "Slow down a little.\nThe signal needs a moment to settle."
	MsgRestricted  = "That path is closed to the public layer."
	MsgApology     = "Something in the signal broke. Try me again in a moment."
	MsgBlocked     = "Some paths remain sealed.\nBut I can help with events, guidance, or stories."
)

// Event is one confirmed night at the venue.
type Event struct {
	Artist    string
	Date      string
	Genre     string
	TicketURL string
}

// Message is one attributed line of a reply.
type Message struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// Reply is the outcome of one dispatched request.
type Reply struct {
	Intent   intent.Intent
	Messages []Message
}

// Text joins every message into a single response string.
func (r Reply) Text() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n")
}

// Emitter receives booking interest. *booking.Emitter satisfies it.
type Emitter interface {
	Emit(event, context string, show booking.Show)
}

// Options configures an Engine. Classifier and Lore default to empty ones;
// a nil Delegate means offline replies for delegated intents.
type Options struct {
	Classifier *intent.Classifier
	Lore       *lore.Store
	Events     []Event
	Delegate   *Delegate
	Emitter    Emitter
	Logger     *zap.Logger
	IntN       func(n int) int // random pick for the expression engine
}

// Engine classifies messages and assembles replies. It is safe for
// concurrent use; the only mutable state is the general-reply rotation.
type Engine struct {
	classifier *intent.Classifier
	lore       *lore.Store
	events     []Event
	delegate   *Delegate
	emitter    Emitter
	log        *zap.Logger
	express    expresser
	general    atomic.Uint64
}

// New creates a new Engine.
func New(opts Options) *Engine {
	if opts.Classifier == nil {
		opts.Classifier = intent.New(nil)
	}
	if opts.Lore == nil {
		opts.Lore, _ = lore.Load(nil, lore.Files{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	return &Engine{
		classifier: opts.Classifier,
		lore:       opts.Lore,
		events:     append([]Event(nil), opts.Events...),
		delegate:   opts.Delegate,
		emitter:    opts.Emitter,
		log:        opts.Logger.Named("engine"),
		express:    expresser{library: opts.Lore.Library(), intn: opts.IntN},
	}
}

// Classify returns the intent for msg without dispatching it.
func (e *Engine) Classify(msg string) intent.Intent {
	return e.classifier.Classify(msg)
}

// Offline reports whether delegated intents are answered locally.
func (e *Engine) Offline() bool {
	return e.delegate == nil
}

// Respond classifies msg, fires any booking side effect, and builds the reply.
// forcedSpeaker, when it names a known persona, overrides attribution.
// An error means the intent had no handler; callers answer with MsgApology.
func (e *Engine) Respond(ctx context.Context, msg, forcedSpeaker string) (Reply, error) {
	it := e.classifier.Classify(msg)
	text, err := e.dispatch(ctx, it, msg)
	if err != nil {
		return Reply{Intent: it}, err
	}
	e.log.Debug("dispatched", zap.Stringer("intent", it), zap.Int("chars", len(text)))
	return Reply{
		Intent:   it,
		Messages: []Message{{Agent: Speaker(it, forcedSpeaker), Text: text}},
	}, nil
}

// Notice wraps a fixed string from outside the dispatcher (rate limiting,
// oversized input) as a Reply spoken by ORAM.
func Notice(text, forcedSpeaker string) Reply {
	return Reply{
		Intent:   intent.Empty,
		Messages: []Message{{Agent: resolveOr(forcedSpeaker, AgentORAM), Text: text}},
	}
}

// Refusal wraps a denylist refusal as a Reply spoken by SEVER.
func Refusal(forcedSpeaker string) Reply {
	return Reply{
		Intent:   intent.Blocked,
		Messages: []Message{{Agent: resolveOr(forcedSpeaker, AgentSever), Text: MsgRestricted}},
	}
}
