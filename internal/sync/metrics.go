package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coacherp/coacherp/internal/models"
)

// Metrics exposes sync engine counters for the /metrics endpoint.
type Metrics struct {
	pushes   prometheus.Counter
	pulls    prometheus.Counter
	failures *prometheus.CounterVec
	status   prometheus.Gauge
}

// NewMetrics registers the sync metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		pushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "coacherp_sync_pushes_total",
			Help: "Completed full-document pushes to the remote store.",
		}),
		pulls: factory.NewCounter(prometheus.CounterOpts{
			Name: "coacherp_sync_pulls_total",
			Help: "Completed pulls from the remote store.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coacherp_sync_failures_total",
			Help: "Sync failures by reason.",
		}, []string{"reason"}),
		status: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coacherp_sync_status",
			Help: "Current sync status (0=idle, 1=syncing, 2=synced, 3=error).",
		}),
	}
}

// newUnregisteredMetrics backs engines built without metrics (tests).
func newUnregisteredMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func (m *Metrics) setStatus(s models.SyncStatus) {
	var v float64
	switch s {
	case models.SyncIdle:
		v = 0
	case models.SyncSyncing:
		v = 1
	case models.SyncSynced:
		v = 2
	case models.SyncError:
		v = 3
	}
	m.status.Set(v)
}
