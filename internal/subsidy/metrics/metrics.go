package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for subsidy calculations.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	Calculations      *prometheus.CounterVec
	Failures          *prometheus.CounterVec
	UnknownLocations  prometheus.Counter
	ReportsRendered   prometheus.Counter
	EventFailures     prometheus.Counter
	CalculateDuration prometheus.Histogram
	RenderDuration    prometheus.Histogram
}

// New registers subsidy metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_calculations_total",
			Help: "Total number of successful subsidy calculations by zone",
		}, []string{"zone"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_calculation_failures_total",
			Help: "Calculations rejected or failed, by error code",
		}, []string{"code"}),
		UnknownLocations: f.NewCounter(prometheus.CounterOpts{
			Name: "subsidy_unknown_subdivisions_total",
			Help: "Lookups for subdivisions missing from the reference dataset",
		}),
		ReportsRendered: f.NewCounter(prometheus.CounterOpts{
			Name: "subsidy_reports_rendered_total",
			Help: "Total number of PDF reports rendered",
		}),
		EventFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "subsidy_event_publish_failures_total",
			Help: "Calculation events that could not be published",
		}),
		CalculateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subsidy_calculate_duration_seconds",
			Help:    "Duration of resolve plus calculate, excluding rendering",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subsidy_render_duration_seconds",
			Help:    "Duration of PDF rendering",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncCalculation(zone string) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(zone).Inc()
}

func (m *Metrics) IncFailure(code string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(code).Inc()
}

func (m *Metrics) IncUnknownLocation() {
	if m == nil {
		return
	}
	m.UnknownLocations.Inc()
}

func (m *Metrics) IncEventFailure() {
	if m == nil {
		return
	}
	m.EventFailures.Inc()
}

// ObserveCalculate records time since start.
func (m *Metrics) ObserveCalculate(start time.Time) {
	if m == nil {
		return
	}
	m.CalculateDuration.Observe(time.Since(start).Seconds())
}

// ObserveRender records time since start and counts the report.
func (m *Metrics) ObserveRender(start time.Time) {
	if m == nil {
		return
	}
	m.ReportsRendered.Inc()
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
