// Package audit queues security decisions for persistence off the request
// path.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/workforce-ai/corsgate/internal/models"
)

// Recorder accepts audit events. The Postgres repository implements it.
type Recorder interface {
	Record(ctx context.Context, e *models.AuditEvent) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, *models.AuditEvent) error { return nil }

// Emit hands e to rec. Audit failures never fail a request, so an error is
// logged at warn level instead of returned.
func Emit(ctx context.Context, rec Recorder, e *models.AuditEvent) {
	if err := rec.Record(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to record audit event",
			slog.String("kind", e.Kind),
			slog.String("path", e.Path),
			slog.String("error", err.Error()))
	}
}

// Async buffers events and writes them to another Recorder from a single worker.
// When the buffer is full new events are dropped and logged rather than
// blocking the request.
type Async struct {
	store   Recorder
	queue   chan *models.AuditEvent
	timeout time.Duration
	logger  *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAsync starts the worker. Close must be called to flush.
func NewAsync(store Recorder, buffer int, writeTimeout time.Duration) *Async {
	a := &Async{
		store:   store,
		queue:   make(chan *models.AuditEvent, buffer),
		timeout: writeTimeout,
		logger:  slog.Default().With(slog.String("component", "audit")),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Record enqueues e. It never blocks.
func (a *Async) Record(_ context.Context, e *models.AuditEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	select {
	case a.queue <- e:
	default:
		a.logger.Warn("audit buffer full, dropping event",
			slog.String("kind", e.Kind),
			slog.String("path", e.Path))
	}
	return nil
}

// Close stops accepting events and waits until queued ones are written.
func (a *Async) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
	})
	a.wg.Wait()
}

func (a *Async) run() {
	defer a.wg.Done()
	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.store.Record(ctx, e); err != nil {
			a.logger.Error("failed to write audit event",
				slog.String("kind", e.Kind),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}
