package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"subsidy/internal/mailer"
	"subsidy/pkg/platform/sentinel"
)

// ErrQueueFull is returned when the buffer has no room for another job.
var ErrQueueFull = fmt.Errorf("delivery queue full: %w", sentinel.ErrUnavailable)

// Queue buffers jobs in a bounded channel and delivers them with Run.
type Queue struct {
	jobs         chan Job
	sender       mailer.Sender
	deduper      Deduper
	dedupeTTL    time.Duration
	workers      int
	sendTimeout  time.Duration
	drainTimeout time.Duration
	logger       *slog.Logger
	metrics      *Metrics
}

// Option configures a Queue.
type Option func(*Queue)

// WithDeduper enables de-duplication of identical reports for ttl.
func WithDeduper(d Deduper, ttl time.Duration) Option {
	return func(q *Queue) {
		q.deduper = d
		q.dedupeTTL = ttl
	}
}

// WithWorkers sets the number of concurrent senders.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithSendTimeout bounds a single delivery including retries.
func WithSendTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.sendTimeout = d
	}
}

// WithDrainTimeout bounds how long Run keeps delivering after shutdown starts.
func WithDrainTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.drainTimeout = d
	}
}

// WithLogger sets the queue logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

// NewQueue creates a queue holding at most capacity pending jobs.
func NewQueue(sender mailer.Sender, capacity int, opts ...Option) *Queue {
	if capacity <= 0 {
		capacity = 100
	}
	q := &Queue{
		jobs:         make(chan Job, capacity),
		sender:       sender,
		workers:      2,
		sendTimeout:  2 * time.Minute,
		drainTimeout: 30 * time.Second,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue hands job to the worker pool without blocking. Jobs with no
// recipient are skipped. A failed enqueue releases its de-duplication claim.
func (q *Queue) Enqueue(ctx context.Context, job Job) (Status, error) {
	if job.Message.To == "" {
		q.metrics.incEnqueued(StatusSkipped)
		return StatusSkipped, nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	claimed := false
	if q.deduper != nil && job.Key != "" {
		ok, err := q.deduper.Claim(ctx, job.Key, q.dedupeTTL)
		switch {
		case err != nil:
			// Deliver anyway; a duplicate email beats a lost one.
			q.logger.WarnContext(ctx, "delivery dedupe unavailable",
				"request_id", job.RequestID,
				"job_id", job.ID.String(),
				"error", err,
			)
		case !ok:
			q.metrics.incEnqueued(StatusDuplicate)
			return StatusDuplicate, nil
		default:
			claimed = true
		}
	}

	select {
	case q.jobs <- job:
		q.metrics.incEnqueued(StatusQueued)
		q.metrics.setQueueSize(len(q.jobs))
		return StatusQueued, nil
	default:
		if claimed {
			q.release(ctx, job)
		}
		q.metrics.incEnqueued(StatusFailed)
		return StatusFailed, ErrQueueFull
	}
}

// Pending reports the number of jobs waiting for a worker.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Run starts the workers and blocks until ctx is cancelled. Jobs still
// buffered at that point are delivered until the drain timeout expires.
func (q *Queue) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			return q.work(gctx)
		})
	}
	return g.Wait()
}

func (q *Queue) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return q.drain(context.WithoutCancel(ctx))
		case job := <-q.jobs:
			q.metrics.setQueueSize(len(q.jobs))
			q.deliver(ctx, job)
		}
	}
}

func (q *Queue) drain(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, q.drainTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			if n := len(q.jobs); n > 0 {
				q.logger.WarnContext(ctx, "delivery drain timed out", "abandoned", n)
			}
			return nil
		case job := <-q.jobs:
			q.metrics.setQueueSize(len(q.jobs))
			q.deliver(ctx, job)
		default:
			return nil
		}
	}
}

func (q *Queue) deliver(ctx context.Context, job Job) {
	start := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, q.sendTimeout)
	defer cancel()

	if err := q.sender.Send(sendCtx, job.Message); err != nil {
		q.metrics.incFailed()
		q.release(ctx, job)
		q.logger.ErrorContext(ctx, "report delivery failed",
			"request_id", job.RequestID,
			"job_id", job.ID.String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	q.metrics.observeSent(time.Since(start).Seconds())
	q.logger.InfoContext(ctx, "report delivered",
		"request_id", job.RequestID,
		"job_id", job.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (q *Queue) release(ctx context.Context, job Job) {
	if q.deduper == nil || job.Key == "" {
		return
	}
	if err := q.deduper.Release(context.WithoutCancel(ctx), job.Key); err != nil {
		q.logger.WarnContext(ctx, "release delivery key failed",
			"job_id", job.ID.String(),
			"error", err,
		)
	}
}
