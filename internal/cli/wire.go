package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/config"
	"github.com/jamesinreallife/oram-public/internal/engine"
	"github.com/jamesinreallife/oram-public/internal/llm"
	"github.com/jamesinreallife/oram-public/internal/lore"
)

var defaultLore fs.FS

// SetDefaultLore registers the lore shipped inside the binary. It is used
// when lore.dir is not configured.
func SetDefaultLore(fsys fs.FS) {
	defaultLore = fsys
}

func loreFS(c config.Config) (fs.FS, string) {
	if c.Lore.Dir != "" {
		return os.DirFS(c.Lore.Dir), c.Lore.Dir
	}
	return defaultLore, "embedded"
}

func loadLore(c config.Config) (*lore.Store, string, error) {
	fsys, source := loreFS(c)
	store, err := lore.Load(fsys, lore.Files{
		Fragments: c.Lore.Fragments,
		Triggers:  c.Lore.Triggers,
		Library:   c.Lore.Library,
	})
	if err != nil {
		return nil, source, fmt.Errorf("load lore: %w", err)
	}
	return store, source, nil
}

func events(c config.Config) []engine.Event {
	out := make([]engine.Event, 0, len(c.Events))
	for _, e := range c.Events {
		out = append(out, engine.Event{
			Artist:    e.Artist,
			Date:      e.Date,
			Genre:     e.Genre,
			TicketURL: e.TicketURL,
		})
	}
	return out
}

// newDelegate returns nil for the offline provider.
func newDelegate(ctx context.Context, c config.Config, log *zap.Logger) (*engine.Delegate, error) {
	if c.Offline() {
		return nil, nil
	}
	client, err := llm.NewClient(ctx, c.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return engine.NewDelegate(client, c.LLM.Timeout, c.LLM.MaxTokens, log), nil
}
