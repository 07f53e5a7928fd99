package booking

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Emitter appends records off the response path. Emit never blocks on the
// write and never reports failure to the caller; failures are logged and
// counted instead.
type Emitter struct {
	out      Appender
	log      *zap.Logger
	now      func() time.Time
	mu       sync.RWMutex // guards closed against wg.Add
	closed   bool
	wg       sync.WaitGroup
	emitted  atomic.Int64
	failures atomic.Int64
}

// NewEmitter creates an Emitter writing to out. A nil logger discards logs.
func NewEmitter(out Appender, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		out: out,
		log: logger.Named("booking"),
		now: time.Now,
	}
}

// Emit records booking interest for event (the intent tag) in the background.
func (e *Emitter) Emit(event, context string, show Show) {
	if e == nil || e.out == nil {
		return
	}
	rec := NewRecord(event, context, show, e.now())

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		e.failures.Add(1)
		e.log.Warn("booking emit after close", zap.String("id", rec.ID), zap.String("event", rec.Event))
		return
	}
	e.wg.Add(1)
	e.mu.RUnlock()

	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				e.failures.Add(1)
				e.log.Error("booking append panicked", zap.Any("panic", r), zap.String("id", rec.ID))
			}
		}()

		if err := e.out.Append(rec); err != nil {
			e.failures.Add(1)
			e.log.Warn("booking append failed",
				zap.Error(err),
				zap.String("id", rec.ID),
				zap.String("event", rec.Event))
			return
		}
		e.emitted.Add(1)
		e.log.Debug("booking interest recorded", zap.String("id", rec.ID), zap.String("event", rec.Event))
	}()
}

// Wait blocks until every in-flight append has finished.
func (e *Emitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

// Close waits for in-flight appends. Records emitted after Close are
// dropped and counted as failures.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
	return nil
}

// Emitted returns how many records were written.
func (e *Emitter) Emitted() int64 {
	if e == nil {
		return 0
	}
	return e.emitted.Load()
}

// Failures returns how many appends failed.
func (e *Emitter) Failures() int64 {
	if e == nil {
		return 0
	}
	return e.failures.Load()
}
