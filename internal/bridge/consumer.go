// Package bridge consumes the booking-interest queue written by the public
// layer and routes each record to the personas that act on it. Routing is
// log-only: decisions are recorded in the bridge database and nothing else.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/booking"
	"github.com/jamesinreallife/oram-public/internal/store"
)

// ConsumerName keys this consumer's offset in the bridge database.
const ConsumerName = "oram_intent_consumer"

const defaultPoll = 2 * time.Second

// Options tunes a Consumer.
type Options struct {
	Name string        // offset key; defaults to ConsumerName
	Poll time.Duration // fallback poll interval; defaults to 2s
}

// Consumer reads new queue lines after its stored offset.
type Consumer struct {
	path string
	db   *store.DB
	log  *zap.Logger
	name string
	poll time.Duration

	mu        sync.Mutex // serializes ProcessOnce
	routed    atomic.Int64
	malformed atomic.Int64
}

// New creates a Consumer for the queue file at queuePath.
func New(queuePath string, db *store.DB, logger *zap.Logger, opts Options) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = ConsumerName
	}
	if opts.Poll <= 0 {
		opts.Poll = defaultPoll
	}
	return &Consumer{
		path: filepath.Clean(queuePath),
		db:   db,
		log:  logger.Named("bridge"),
		name: opts.Name,
		poll: opts.Poll,
	}
}

// Route decides where a record goes. Only booking interest is routed.
// Records written before the kind field existed carry it in event.
func Route(rec booking.Record) []store.Routing {
	if rec.Kind != booking.Kind && rec.Event != booking.Kind {
		return nil
	}
	base := store.Routing{
		RecordID: rec.ID,
		Kind:     booking.Kind,
		Event:    rec.Event,
		Artist:   rec.Artist,
		Date:     rec.Date,
		Context:  rec.Context,
	}
	kairos, sever, lumena := base, base, base
	kairos.Target, kairos.Action = "KAIROS", "booking"
	sever.Target, sever.Action = "SEVER", "audit"
	lumena.Target, lumena.Action = "LUMENA", "promotion_candidate"
	return []store.Routing{kairos, sever, lumena}
}

// ProcessOnce routes every complete line past the stored offset and saves
// the new offset together with the routings. A trailing line without a
// newline is left for the next pass. It returns the number of records routed.
func (c *Consumer) ProcessOnce(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset, err := c.db.Offset(c.name)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open queue: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			break // partial or empty tail
		}
		if err != nil {
			return 0, fmt.Errorf("read queue: %w", err)
		}
		lines = append(lines, line)
	}

	if int64(len(lines)) < offset {
		c.log.Warn("queue shorter than offset, starting over",
			zap.Int64("offset", offset), zap.Int("lines", len(lines)))
		offset = 0
	}
	if int64(len(lines)) == offset {
		return 0, nil
	}

	var batch []store.Routing
	routed := 0
	next := offset
	for _, line := range lines[offset:] {
		if err := ctx.Err(); err != nil {
			break
		}
		next++

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		rec, err := booking.Parse(line)
		if err != nil {
			c.malformed.Add(1)
			c.log.Warn("skipping malformed queue line", zap.Int64("line", next), zap.Error(err))
			continue
		}
		if rec.ID == "" {
			// Older records carry no id; the line number keeps them distinct.
			rec.ID = fmt.Sprintf("line:%d", next)
		}
		routings := Route(rec)
		if len(routings) == 0 {
			c.log.Info("unknown record kind", zap.String("kind", rec.Kind), zap.String("event", rec.Event))
			continue
		}
		for _, rt := range routings {
			c.log.Info("routed",
				zap.String("target", rt.Target),
				zap.String("action", rt.Action),
				zap.String("artist", rt.Artist),
				zap.String("date", rt.Date),
				zap.String("context", rt.Context))
		}
		batch = append(batch, routings...)
		routed++
	}

	if err := c.db.CommitBatch(c.name, next, batch); err != nil {
		return 0, err
	}
	c.routed.Add(int64(routed))
	return routed, nil
}

// Run processes the queue until ctx is done, waking on writes to the queue
// file and on every poll tick. Without a working file watcher it polls only.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer starting", zap.String("queue", c.path), zap.Duration("poll", c.poll))

	var events <-chan fsnotify.Event
	var errs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.log.Warn("file watcher unavailable, polling only", zap.Error(err))
	} else {
		defer watcher.Close()
		// Watch the directory: the file may not exist yet.
		if err := watcher.Add(filepath.Dir(c.path)); err != nil {
			c.log.Warn("watch queue dir failed, polling only", zap.Error(err))
		} else {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	c.tick(ctx)

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("consumer stopped", zap.Int64("routed", c.routed.Load()))
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == c.path && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				c.tick(ctx)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.log.Warn("file watcher error", zap.Error(err))
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Consumer) tick(ctx context.Context) {
	if n, err := c.ProcessOnce(ctx); err != nil {
		if ctx.Err() == nil {
			c.log.Error("process queue", zap.Error(err))
		}
	} else if n > 0 {
		c.log.Debug("processed queue", zap.Int("records", n))
	}
}

// Routed returns how many records this consumer has routed.
func (c *Consumer) Routed() int64 {
	return c.routed.Load()
}

// Malformed returns how many unparseable lines were skipped.
func (c *Consumer) Malformed() int64 {
	return c.malformed.Load()
}
