package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CredentialsCreated prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	CardsRendered      *prometheus.CounterVec
	ExportsGenerated   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CredentialsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capela_credentials_created_total",
			Help: "Total number of credential records created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capela_status_transitions_total",
			Help: "Total number of production status transitions applied",
		}, []string{"status"}),
		CardsRendered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capela_cards_rendered_total",
			Help: "Total number of credential card sides rendered",
		}, []string{"side"}),
		ExportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capela_exports_generated_total",
			Help: "Total number of batch export bundles generated",
		}),
	}
}

// IncrementCredentialsCreated increments the created-records counter by 1.
func (m *Metrics) IncrementCredentialsCreated() {
	if m == nil {
		return
	}
	m.CredentialsCreated.Inc()
}

// IncrementStatusTransition counts one applied transition to the given status.
func (m *Metrics) IncrementStatusTransition(status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status).Inc()
}

// IncrementCardRendered counts one rendered card side ("front" or "back").
func (m *Metrics) IncrementCardRendered(side string) {
	if m == nil {
		return
	}
	m.CardsRendered.WithLabelValues(side).Inc()
}

// IncrementExportsGenerated increments the export counter by 1.
func (m *Metrics) IncrementExportsGenerated() {
	if m == nil {
		return
	}
	m.ExportsGenerated.Inc()
}
