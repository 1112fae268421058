package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"subsidy/internal/mailer"
	"subsidy/internal/mailer/mocks"
	"subsidy/pkg/platform/sentinel"
)

type QueueSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	sender  *mocks.MockSender
	deduper *MemoryDeduper
	metrics *Metrics
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueSuite))
}

func (s *QueueSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sender = mocks.NewMockSender(s.ctrl)
	s.deduper = NewMemoryDeduper()
	s.metrics = NewMetrics(prometheus.NewRegistry())
}

func (s *QueueSuite) queue(capacity int, opts ...Option) *Queue {
	base := []Option{
		WithDeduper(s.deduper, time.Hour),
		WithMetrics(s.metrics),
		WithDrainTimeout(time.Second),
	}
	return NewQueue(s.sender, capacity, append(base, opts...)...)
}

func job(to, key string) Job {
	return Job{
		RequestID: "req-1",
		Key:       key,
		Message:   mailer.Message{To: to, Subject: "Subsidy Calculation Report"},
	}
}

func (s *QueueSuite) TestEnqueue() {
	ctx := context.Background()

	s.Run("skips jobs without a recipient", func() {
		status, err := s.queue(1).Enqueue(ctx, job("", "k-skip"))
		s.Require().NoError(err)
		s.Equal(StatusSkipped, status)
	})

	s.Run("queues a new report", func() {
		q := s.queue(1)
		status, err := q.Enqueue(ctx, job("owner@example.com", "k-new"))
		s.Require().NoError(err)
		s.Equal(StatusQueued, status)
		s.Equal(1, q.Pending())
	})

	s.Run("reports duplicates within the ttl", func() {
		q := s.queue(4)
		_, err := q.Enqueue(ctx, job("owner@example.com", "k-dup"))
		s.Require().NoError(err)

		status, err := q.Enqueue(ctx, job("owner@example.com", "k-dup"))
		s.Require().NoError(err)
		s.Equal(StatusDuplicate, status)
		s.Equal(1, q.Pending())
	})

	s.Run("fails without blocking when full and releases the claim", func() {
		q := s.queue(1)
		_, err := q.Enqueue(ctx, job("a@example.com", "k-a"))
		s.Require().NoError(err)

		status, err := q.Enqueue(ctx, job("b@example.com", "k-b"))
		s.Equal(StatusFailed, status)
		s.Require().ErrorIs(err, ErrQueueFull)
		s.Require().ErrorIs(err, sentinel.ErrUnavailable)

		ok, err := s.deduper.Claim(ctx, "k-b", time.Hour)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("queues anyway when the deduper is down", func() {
		q := NewQueue(s.sender, 1, WithDeduper(brokenDeduper{}, time.Hour))
		status, err := q.Enqueue(ctx, job("owner@example.com", "k-broken"))
		s.Require().NoError(err)
		s.Equal(StatusQueued, status)
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Enqueued.WithLabelValues(string(StatusDuplicate))))
}

func (s *QueueSuite) TestRun() {
	s.Run("delivers queued jobs", func() {
		q := s.queue(4, WithWorkers(2))
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(2)
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, mailer.Message) error {
				wg.Done()
				return nil
			}).Times(2)

		done := make(chan error, 1)
		go func() { done <- q.Run(ctx) }()

		_, err := q.Enqueue(ctx, job("a@example.com", "run-a"))
		s.Require().NoError(err)
		_, err = q.Enqueue(ctx, job("b@example.com", "run-b"))
		s.Require().NoError(err)

		wg.Wait()
		cancel()
		s.Require().NoError(<-done)
		s.Equal(float64(2), testutil.ToFloat64(s.metrics.Sent))
	})

	s.Run("drains buffered jobs on shutdown", func() {
		q := s.queue(4)
		for _, k := range []string{"drain-a", "drain-b", "drain-c"} {
			_, err := q.Enqueue(context.Background(), job(k+"@example.com", k))
			s.Require().NoError(err)
		}
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(3)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s.Require().NoError(q.Run(ctx))
		s.Zero(q.Pending())
	})

	s.Run("failed delivery releases the claim", func() {
		q := s.queue(1)
		_, err := q.Enqueue(context.Background(), job("owner@example.com", "fail-k"))
		s.Require().NoError(err)
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("relay down")).Times(1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s.Require().NoError(q.Run(ctx))

		ok, err := s.deduper.Claim(context.Background(), "fail-k", time.Hour)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Failed))
	})
}

type brokenDeduper struct{}

func (brokenDeduper) Claim(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenDeduper) Release(context.Context, string) error {
	return errors.New("connection refused")
}
