package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Verifications        *prometheus.CounterVec
	VerificationDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "haulpass_verifications_total",
			Help: "Total number of presentation verifications by result",
		}, []string{"result"}),
		VerificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "haulpass_verification_duration_seconds",
			Help:    "Time spent verifying a presentation end to end",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) Record(valid bool, elapsed time.Duration) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.Verifications.WithLabelValues(result).Inc()
	m.VerificationDuration.Observe(elapsed.Seconds())
}
