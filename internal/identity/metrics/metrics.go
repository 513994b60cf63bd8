package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	IdentitiesCreated prometheus.Counter
	IdentityLoads     prometheus.Counter
	PublishFailures   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "haulpass_identity_created_total",
			Help: "Total number of actor identities created and published",
		}),
		IdentityLoads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "haulpass_identity_loads_total",
			Help: "Total number of times a persisted identity was loaded",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "haulpass_identity_publish_failures_total",
			Help: "Total number of failed DID document publications",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.IdentitiesCreated.Inc()
}

func (m *Metrics) IncrementLoads() {
	m.IdentityLoads.Inc()
}

func (m *Metrics) IncrementPublishFailures() {
	m.PublishFailures.Inc()
}
