package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a logging pipeline on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer handed out in synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// asyncCore is the queue shared by an AsyncHandler and every handler
// derived from it via WithAttrs or WithGroup. Board mutations log on the
// request path, so records go through here instead of blocking on stdout.
type asyncCore struct {
	queue   chan slog.Record
	workers sync.WaitGroup
	dropped atomic.Int64
}

// AsyncHandler hands records to a worker pool behind a bounded queue.
// Derived handlers wrap their own inner slog.Handler but drain through
// the same core, so one Close flushes everything.
type AsyncHandler struct {
	inner slog.Handler
	core  *asyncCore
}

// NewAsyncHandler starts workers goroutines draining a queue of chanSize
// records into inner.
func NewAsyncHandler(inner slog.Handler, chanSize, workers int) *AsyncHandler {
	h := &AsyncHandler{
		inner: inner,
		core:  &asyncCore{queue: make(chan slog.Record, chanSize)},
	}
	for range workers {
		h.core.workers.Add(1)
		go h.drain()
	}
	return h
}

func (h *AsyncHandler) drain() {
	defer h.core.workers.Done()
	for rec := range h.core.queue {
		_ = h.inner.Handle(context.Background(), rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record without blocking. A full queue drops the
// record and bumps the drop counter; losing a log line beats stalling a
// request.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.queue <- rec:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs derives a handler with extra attributes on the same core.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), core: h.core}
}

// WithGroup derives a handler with a group prefix on the same core.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), core: h.core}
}

// DroppedCount reports how many records were lost to a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close stops accepting records and blocks until the workers have
// flushed the queue.
func (h *AsyncHandler) Close() {
	close(h.core.queue)
	h.core.workers.Wait()
}
