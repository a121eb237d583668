package svo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "svo"

type metrics struct {
	enqueued  *prometheus.CounterVec
	applied   *prometheus.CounterVec
	compacted prometheus.Counter
	split     prometheus.Counter
	entries   prometheus.Gauge
}

// newMetrics builds the store's collectors. A nil registerer leaves them
// unregistered, which keeps them cheap and collision free.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_enqueued_total",
			Help:      "Mutations accepted by Insert and Remove.",
		}, []string{"op"}),
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_applied_total",
			Help:      "Mutations drained into the ordered map.",
		}, []string{"op"}),
		compacted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "regions_compacted_total",
			Help:      "Homogeneous regions collapsed into a single entry.",
		}),
		split: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "regions_split_total",
			Help:      "Compacted regions split by a partial removal or overwrite.",
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "entries",
			Help:      "Entries currently stored.",
		}),
	}
}
