package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	channelLive = "live"
	channelPush = "push"

	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Metrics 投递计数；reg 为 nil 时不注册
type Metrics struct {
	Deliveries *prometheus.CounterVec
	Persisted  prometheus.Counter
	Pruned     prometheus.Counter
	Dropped    prometheus.Counter
	Panics     prometheus.Counter
	Latency    prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		Persisted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "notifications_persisted_total",
			Help:      "Notifications written by fan-out.",
		}),
		Pruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "push_subscriptions_pruned_total",
			Help:      "Push subscriptions removed after a permanent failure.",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "jobs_dropped_total",
			Help:      "Delivery jobs dropped because the queue was full or closed.",
		}),
		Panics: f.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "delivery_panics_total",
			Help:      "Recovered panics in delivery jobs.",
		}),
		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "delivery_latency_seconds",
			Help:      "Time from enqueue to both channels finishing.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) delivery(channel, outcome string) {
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
}
