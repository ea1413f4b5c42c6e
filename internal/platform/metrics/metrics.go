// Package metrics holds the Prometheus instruments for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EquipmentCreated   prometheus.Counter
	ViolationsCreated  prometheus.Counter
	ViolationsRejected prometheus.Counter
	EvidenceUploads    prometheus.Counter
}

// New creates the metrics and registers them on reg. Tests pass their own
// registry so suites never collide on the global one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EquipmentCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficwatch_equipment_created_total",
			Help: "Total number of equipment records created.",
		}),
		ViolationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficwatch_violations_created_total",
			Help: "Total number of violations recorded.",
		}),
		ViolationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficwatch_violations_rejected_total",
			Help: "Total number of violations rejected by the inactive-equipment gate.",
		}),
		EvidenceUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficwatch_evidence_uploads_total",
			Help: "Total number of evidence images uploaded to the object store.",
		}),
	}
	reg.MustRegister(m.EquipmentCreated, m.ViolationsCreated, m.ViolationsRejected, m.EvidenceUploads)
	return m
}
