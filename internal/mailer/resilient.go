package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	dErrors "subsidy/pkg/domain-errors"
	"subsidy/pkg/platform/sentinel"
)

// RetryPolicy bounds how hard a ResilientSender tries.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy retries a handful of times over at most a minute.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      4,
	InitialInterval: 500 * time.Millisecond,
	MaxElapsedTime:  time.Minute,
}

// ResilientSender retries transient failures with exponential backoff and
// stops calling the relay while it is failing consistently.
type ResilientSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker
	policy  RetryPolicy
	logger  *slog.Logger
}

// ResilientOption configures a ResilientSender.
type ResilientOption func(*ResilientSender)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) ResilientOption {
	return func(r *ResilientSender) {
		r.policy = p
	}
}

// WithLogger sets a logger for retry notifications.
func WithLogger(logger *slog.Logger) ResilientOption {
	return func(r *ResilientSender) {
		r.logger = logger
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(failures uint32, openFor time.Duration) ResilientOption {
	return func(r *ResilientSender) {
		r.breaker = newBreaker(failures, openFor)
	}
}

// NewResilientSender wraps next.
func NewResilientSender(next Sender, opts ...ResilientOption) *ResilientSender {
	r := &ResilientSender{
		next:    next,
		breaker: newBreaker(5, 30*time.Second),
		policy:  DefaultRetryPolicy,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newBreaker(failures uint32, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "smtp",
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		// Rejected addresses say nothing about relay health.
		IsSuccessful: func(err error) bool {
			return err == nil || dErrors.HasCode(err, dErrors.CodeInvalidInput)
		},
	})
}

// Send delivers msg, retrying transient errors. Invalid addresses and an open
// breaker are not retried; the latter is reported as sentinel.ErrUnavailable.
func (r *ResilientSender) Send(ctx context.Context, msg Message) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.policy.InitialInterval
	bo.MaxElapsedTime = r.policy.MaxElapsedTime

	attempt := 0
	op := func() error {
		attempt++
		_, err := r.breaker.Execute(func() (interface{}, error) {
			return nil, r.next.Send(ctx, msg)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(errors.Join(sentinel.ErrUnavailable, err))
		case dErrors.HasCode(err, dErrors.CodeInvalidInput):
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.WarnContext(ctx, "mail send failed, retrying",
			"attempt", attempt,
			"retry_in", wait.String(),
			"error", err,
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, r.policy.MaxRetries), ctx)
	return backoff.RetryNotify(op, policy, notify)
}

// State reports the breaker state: closed, half-open or open.
func (r *ResilientSender) State() string {
	return r.breaker.State().String()
}

// Health fails with sentinel.ErrUnavailable while the breaker is open.
func (r *ResilientSender) Health(context.Context) error {
	if r.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("smtp relay circuit open: %w", sentinel.ErrUnavailable)
	}
	return nil
}
