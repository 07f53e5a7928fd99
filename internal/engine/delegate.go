package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/llm"
)

const defaultDelegateTimeout = 20 * time.Second

// Delegate forwards a prompt to a completion provider. Every failure mode
// (error, timeout, empty output) collapses to MsgApology.
type Delegate struct {
	Client    llm.Client
	Timeout   time.Duration
	MaxTokens int
	Logger    *zap.Logger
}

// NewDelegate creates a Delegate around client.
func NewDelegate(client llm.Client, timeout time.Duration, maxTokens int, logger *zap.Logger) *Delegate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Delegate{
		Client:    client,
		Timeout:   timeout,
		MaxTokens: maxTokens,
		Logger:    logger.Named("delegate"),
	}
}

// Ask makes exactly one completion call and waits for it, bounded by Timeout.
func (d *Delegate) Ask(ctx context.Context, system, user string) string {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDelegateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	resp, err := d.Client.Complete(ctx, llm.Prompt{
		System:    system,
		User:      user,
		MaxTokens: d.MaxTokens,
	})
	if err != nil {
		log.Warn("completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return MsgApology
	}
	if resp == nil {
		log.Warn("completion returned no response")
		return MsgApology
	}

	text := cleanReply(resp.Content)
	if text == "" {
		log.Warn("completion returned empty text", zap.String("provider", resp.Provider))
		return MsgApology
	}
	log.Debug("completion",
		zap.String("provider", resp.Provider),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", time.Since(start)))
	return text
}
