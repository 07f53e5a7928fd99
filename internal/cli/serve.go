package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jamesinreallife/oram-public/internal/booking"
	"github.com/jamesinreallife/oram-public/internal/bridge"
	"github.com/jamesinreallife/oram-public/internal/engine"
	"github.com/jamesinreallife/oram-public/internal/intent"
	"github.com/jamesinreallife/oram-public/internal/ratelimit"
	"github.com/jamesinreallife/oram-public/internal/server"
	"github.com/jamesinreallife/oram-public/internal/store"
)

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lr, loreSource, err := loadLore(cfg)
	if err != nil {
		return err
	}
	for _, name := range lr.Missing() {
		logger.Warn("lore file missing", zap.String("file", name), zap.String("source", loreSource))
	}

	delegate, err := newDelegate(ctx, cfg, logger)
	if err != nil {
		return err
	}

	queue, err := booking.OpenLog(cfg.Data.Dir)
	if err != nil {
		return err
	}
	emitter := booking.NewEmitter(queue, logger)
	defer emitter.Close()

	eng := engine.New(engine.Options{
		Classifier: intent.New(lr.Triggers()),
		Lore:       lr,
		Events:     events(cfg),
		Delegate:   delegate,
		Emitter:    emitter,
		Logger:     logger,
	})

	srv, err := server.New(server.Options{
		Engine: eng,
		Limiter: ratelimit.New(ratelimit.Config{
			Window: cfg.Limits.RateWindow,
			Max:    cfg.Limits.RateMax,
		}),
		MaxInput:   cfg.Limits.MaxInput,
		Restricted: cfg.Restricted,
		MultiAgent: cfg.Agents.Enabled,
		Version:    VersionString(),
		Provider:   cfg.LLM.Provider,
		Lore:       len(lr.Fragments()),
		Bookings:   emitter,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	var consumer *bridge.Consumer
	if cfg.Bridge.Enabled {
		db, err := store.Open(store.PathIn(cfg.Data.Dir))
		if err != nil {
			return fmt.Errorf("open bridge db: %w", err)
		}
		defer db.Close()
		consumer = bridge.New(queue.Path, db, logger, bridge.Options{Poll: cfg.Bridge.Poll})
	}

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "oram serving on %s\n", addr)
	fmt.Fprintf(os.Stderr, "  llm: %s\n", cfg.LLM.Provider)
	fmt.Fprintf(os.Stderr, "  lore: %s (%d fragments)\n", loreSource, len(lr.Fragments()))
	fmt.Fprintf(os.Stderr, "  queue: %s\n", queue.Path)
	if consumer != nil {
		fmt.Fprintf(os.Stderr, "  bridge: %s\n", store.PathIn(cfg.Data.Dir))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := srv.Limiter().Sweep(); n > 0 {
					logger.Debug("rate windows swept", zap.Int("keys", n))
				}
			}
		}
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	return g.Wait()
}
