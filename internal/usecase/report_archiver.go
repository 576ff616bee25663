package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinScope/internal/domain/models"
	drepo "FinScope/internal/domain/repository"
	applogger "FinScope/pkg/logger"
)

// ReportArchiver ships completed runs to the configured backend from a
// background worker. Enqueue never blocks the request path; a full buffer
// drops the event.
type ReportArchiver struct {
	pub        drepo.ReportPublisher
	store      drepo.ReportStorage
	backend    string
	metrics    drepo.Metrics
	log        *applogger.Logger
	bufSize    int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	mu      sync.Mutex
	closed  bool
	started bool
	queue   chan models.ReportEvent
	done    chan struct{}
}

type ArchiverOption func(*ReportArchiver)

// WithArchiveBuffer sets the queue size.
func WithArchiveBuffer(n int) ArchiverOption {
	return func(a *ReportArchiver) {
		if n > 0 {
			a.bufSize = n
		}
	}
}

// WithArchiveRetry sets delivery attempts and the initial backoff.
func WithArchiveRetry(maxRetries int, base time.Duration) ArchiverOption {
	return func(a *ReportArchiver) {
		if maxRetries >= 0 {
			a.maxRetries = maxRetries
		}
		if base > 0 {
			a.baseDelay = base
		}
	}
}

// NewReportArchiver creates an archiver for backend "kafka", "redis" or
// "clickhouse". The first two go through pub, the last writes store directly.
func NewReportArchiver(pub drepo.ReportPublisher, store drepo.ReportStorage, backend string, m drepo.Metrics, l *applogger.Logger, opts ...ArchiverOption) *ReportArchiver {
	a := &ReportArchiver{
		pub:        pub,
		store:      store,
		backend:    backend,
		metrics:    m,
		log:        l,
		bufSize:    64,
		maxRetries: 3,
		baseDelay:  200 * time.Millisecond,
		maxDelay:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = applogger.NewNop()
	}
	a.queue = make(chan models.ReportEvent, a.bufSize)
	a.done = make(chan struct{})
	return a
}

// Enqueue schedules ev for delivery. It returns false when the archiver is
// stopped or its buffer is full.
func (a *ReportArchiver) Enqueue(ev models.ReportEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	select {
	case a.queue <- ev:
		a.metrics.RecordLatency("archive_queue_depth", float64(len(a.queue)))
		return true
	default:
		a.metrics.RecordError("archive_buffer_full")
		return false
	}
}

// Start launches the delivery worker.
func (a *ReportArchiver) Start(ctx context.Context) {
	a.mu.Lock()
	if a.started || a.closed {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.mu.Unlock()

	go func() {
		defer close(a.done)
		for ev := range a.queue {
			if err := a.deliver(ctx, ev); err != nil {
				a.metrics.RecordError("archive_drop")
				a.log.Error("report archive failed", applogger.String("run_id", ev.RunID), applogger.Error(err))
			}
		}
	}()
}

// Stop rejects new events and waits for queued ones to be delivered.
func (a *ReportArchiver) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	started := a.started
	a.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("archiver stop: %w", ctx.Err())
	}
}

// Close releases the backend clients.
func (a *ReportArchiver) Close() {
	if a.pub != nil {
		_ = a.pub.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *ReportArchiver) deliver(ctx context.Context, ev models.ReportEvent) error {
	delay := a.baseDelay
	var err error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			if delay < a.maxDelay {
				delay *= 2
			}
		}
		start := time.Now()
		if err = a.send(ctx, ev); err == nil {
			a.metrics.RecordLatency("archive_"+a.backend, time.Since(start).Seconds())
			return nil
		}
		a.metrics.RecordError("archive_attempt")
		a.log.Warn("report archive attempt failed", applogger.String("run_id", ev.RunID), applogger.Int("attempt", attempt+1), applogger.Error(err))
	}
	return err
}

func (a *ReportArchiver) send(ctx context.Context, ev models.ReportEvent) error {
	switch a.backend {
	case "kafka", "redis":
		return a.pub.Publish(ctx, ev)
	case "clickhouse":
		return a.store.Store(ctx, ev)
	default:
		return fmt.Errorf("unknown archive backend: %s", a.backend)
	}
}
