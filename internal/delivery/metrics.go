package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for report delivery.
type Metrics struct {
	Enqueued  *prometheus.CounterVec
	Sent      prometheus.Counter
	Failed    prometheus.Counter
	QueueSize prometheus.Gauge
	SendTime  prometheus.Histogram
}

// NewMetrics registers delivery metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enqueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_delivery_requests_total",
			Help: "Delivery requests by enqueue outcome",
		}, []string{"status"}),
		Sent: f.NewCounter(prometheus.CounterOpts{
			Name: "subsidy_delivery_sent_total",
			Help: "Total number of report emails delivered",
		}),
		Failed: f.NewCounter(prometheus.CounterOpts{
			Name: "subsidy_delivery_failed_total",
			Help: "Total number of report emails that could not be delivered",
		}),
		QueueSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "subsidy_delivery_queue_depth",
			Help: "Jobs waiting for a delivery worker",
		}),
		SendTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subsidy_delivery_send_duration_seconds",
			Help:    "Time spent handing a report to the SMTP relay, including retries",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

func (m *Metrics) incEnqueued(s Status) {
	if m == nil {
		return
	}
	m.Enqueued.WithLabelValues(string(s)).Inc()
}

func (m *Metrics) observeSent(seconds float64) {
	if m == nil {
		return
	}
	m.Sent.Inc()
	m.SendTime.Observe(seconds)
}

func (m *Metrics) incFailed() {
	if m == nil {
		return
	}
	m.Failed.Inc()
}

func (m *Metrics) setQueueSize(n int) {
	if m == nil {
		return
	}
	m.QueueSize.Set(float64(n))
}
