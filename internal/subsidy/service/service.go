// Package service orchestrates a subsidy calculation: zone resolution, the
// calculator, report rendering, delivery and analytics events.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Locator,Renderer,DeliveryQueue,Publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"subsidy/internal/delivery"
	"subsidy/internal/report"
	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/events"
	"subsidy/internal/subsidy/location"
	"subsidy/internal/subsidy/metrics"
	"subsidy/internal/subsidy/zone"
	dErrors "subsidy/pkg/domain-errors"
	"subsidy/pkg/requestcontext"
)

const tracerName = "subsidy/internal/subsidy/service"

// Locator resolves subdivision names. *location.Index satisfies it.
type Locator interface {
	Lookup(name string) (location.Entry, error)
}

// Renderer produces the PDF report.
type Renderer interface {
	Render(doc report.Document) ([]byte, error)
}

// DeliveryQueue accepts report emails for background delivery.
type DeliveryQueue interface {
	Enqueue(ctx context.Context, job delivery.Job) (delivery.Status, error)
}

// Publisher emits calculation events.
type Publisher interface {
	Publish(ctx context.Context, evt events.Calculated) error
}

// Outcome is the result of one processed submission.
type Outcome struct {
	ReportID     uuid.UUID
	Location     location.Entry
	Zone         zone.Code
	Request      calculator.Request
	Result       calculator.Result
	Delivery     delivery.Status
	CalculatedAt time.Time
}

// Document returns the report document for this outcome.
func (o *Outcome) Document() report.Document {
	return report.Document{
		ID:          o.ReportID,
		Zone:        o.Zone,
		Request:     o.Request,
		Result:      o.Result,
		GeneratedAt: o.CalculatedAt,
	}
}

// Service holds immutable tables plus optional collaborators. A Service with
// only a locator and a table is a pure resolver and calculator.
type Service struct {
	locator    Locator
	table      *zone.Table
	calculator *calculator.Calculator

	renderer  Renderer
	queue     DeliveryQueue
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

func WithDeliveryQueue(q DeliveryQueue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service. The renderer defaults to an A4 PDF renderer.
func New(locator Locator, table *zone.Table, opts ...Option) *Service {
	s := &Service{
		locator:    locator,
		table:      table,
		calculator: calculator.FromTable(table),
		renderer:   report.NewRenderer(),
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveZone maps a subdivision name to its zone code.
func (s *Service) ResolveZone(ctx context.Context, subdivision string) (zone.Code, error) {
	entry, err := s.Locate(ctx, subdivision)
	if err != nil {
		return "", err
	}
	return entry.Zone, nil
}

// Locate returns the full reference entry for a subdivision.
func (s *Service) Locate(ctx context.Context, subdivision string) (location.Entry, error) {
	entry, err := s.locator.Lookup(subdivision)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeSubdivisionNotFound) {
			s.metrics.IncUnknownLocation()
			s.logger.InfoContext(ctx, "unknown subdivision",
				"request_id", requestcontext.RequestID(ctx),
				"subdivision", subdivision,
			)
		}
		return location.Entry{}, err
	}
	return entry, nil
}

// CalculateSubsidy computes the entitlement for a request in the given zone.
func (s *Service) CalculateSubsidy(ctx context.Context, code zone.Code, req calculator.Request) (calculator.Result, error) {
	_, span := s.tracer.Start(ctx, "subsidy.Calculate", trace.WithAttributes(
		attribute.String("subsidy.zone", code.String()),
		attribute.String("subsidy.enterprise_size", req.EnterpriseSize.String()),
	))
	defer span.End()

	profile, err := s.table.Profile(code)
	if err != nil {
		recordError(span, err)
		return calculator.Result{}, err
	}
	res, err := s.calculator.Calculate(profile, req)
	if err != nil {
		recordError(span, err)
		return calculator.Result{}, err
	}
	span.SetAttributes(attribute.String("subsidy.total", res.TotalSubsidy.StringFixed(calculator.Places)))
	return res, nil
}

// Zones lists every zone profile in code order.
func (s *Service) Zones() []zone.Profile {
	return s.table.Profiles()
}

// Zone returns the profile for one code.
func (s *Service) Zone(code zone.Code) (zone.Profile, error) {
	return s.table.Profile(code)
}

// Process resolves the zone, calculates, queues the emailed report and
// publishes an analytics event. Delivery and event failures are logged but do
// not fail the calculation.
func (s *Service) Process(ctx context.Context, req calculator.Request) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "subsidy.Process")
	defer span.End()

	out, err := s.evaluate(ctx, req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("subsidy.report_id", out.ReportID.String()))

	out.Delivery, err = s.deliver(ctx, out)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("subsidy.delivery", string(out.Delivery)))

	s.publish(ctx, out)
	return out, nil
}

// Report calculates and renders the PDF without delivering it.
func (s *Service) Report(ctx context.Context, req calculator.Request) (*Outcome, []byte, error) {
	ctx, span := s.tracer.Start(ctx, "subsidy.Report")
	defer span.End()

	out, err := s.evaluate(ctx, req)
	if err != nil {
		recordError(span, err)
		return nil, nil, err
	}
	pdf, err := s.render(ctx, out)
	if err != nil {
		recordError(span, err)
		return nil, nil, err
	}
	out.Delivery = delivery.StatusSkipped
	s.publish(ctx, out)
	return out, pdf, nil
}

func (s *Service) evaluate(ctx context.Context, req calculator.Request) (*Outcome, error) {
	start := time.Now()

	entry, err := s.Locate(ctx, req.Subdivision)
	if err != nil {
		s.metrics.IncFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}
	res, err := s.CalculateSubsidy(ctx, entry.Zone, req)
	if err != nil {
		s.metrics.IncFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.ObserveCalculate(start)
	s.metrics.IncCalculation(entry.Zone.String())

	// Report the dataset's spelling of the subdivision, not the caller's.
	req = req.Normalized()
	req.Subdivision = entry.Subdivision

	return &Outcome{
		ReportID:     uuid.New(),
		Location:     entry,
		Zone:         entry.Zone,
		Request:      req,
		Result:       res,
		CalculatedAt: requestcontext.Now(ctx),
	}, nil
}

func (s *Service) render(ctx context.Context, out *Outcome) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "subsidy.Render")
	defer span.End()

	start := time.Now()
	pdf, err := s.renderer.Render(out.Document())
	if err != nil {
		recordError(span, err)
		s.logger.ErrorContext(ctx, "report render failed",
			"request_id", requestcontext.RequestID(ctx),
			"report_id", out.ReportID.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render report")
	}
	s.metrics.ObserveRender(start)
	return pdf, nil
}

func (s *Service) deliver(ctx context.Context, out *Outcome) (delivery.Status, error) {
	if s.queue == nil || out.Request.Email == "" {
		return delivery.StatusSkipped, nil
	}
	pdf, err := s.render(ctx, out)
	if err != nil {
		return "", err
	}

	doc := out.Document()
	job := delivery.Job{
		ID:        out.ReportID,
		RequestID: requestcontext.RequestID(ctx),
		Key:       dedupeKey(out),
		Message:   mailerMessage(out.Request.Email, doc, pdf),
	}
	status, err := s.queue.Enqueue(ctx, job)
	if err != nil {
		s.logger.WarnContext(ctx, "report delivery not queued",
			"request_id", job.RequestID,
			"report_id", out.ReportID.String(),
			"error", err,
		)
		return delivery.StatusFailed, nil
	}
	return status, nil
}

func (s *Service) publish(ctx context.Context, out *Outcome) {
	if s.publisher == nil {
		return
	}
	evt := events.NewCalculated(out.ReportID, out.Zone, out.Request, out.Result, out.CalculatedAt)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.metrics.IncEventFailure()
		s.logger.WarnContext(ctx, "calculation event not published",
			"request_id", requestcontext.RequestID(ctx),
			"report_id", out.ReportID.String(),
			"error", err,
		)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}
