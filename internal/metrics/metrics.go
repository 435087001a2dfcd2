package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlacementMetrics tracks placement outcomes. A nil *PlacementMetrics is a no-op.
type PlacementMetrics struct {
	Placements    *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	Notifications *prometheus.CounterVec
}

func NewPlacementMetrics(reg prometheus.Registerer) *PlacementMetrics {
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealer_orders",
		Subsystem: "placement",
		Name:      "attempts_total",
		Help:      "Order placement attempts by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dealer_orders",
		Subsystem: "placement",
		Name:      "duration_ms",
		Help:      "Order placement latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealer_orders",
		Subsystem: "notification",
		Name:      "deliveries_total",
		Help:      "Post-commit notification deliveries by channel and status.",
	}, []string{"channel", "status"})

	reg.MustRegister(placements, latency, notifications)
	return &PlacementMetrics{Placements: placements, LatencyMS: latency, Notifications: notifications}
}

func (m *PlacementMetrics) ObservePlacement(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Placements.WithLabelValues(outcome).Inc()
	m.LatencyMS.WithLabelValues(outcome).Observe(float64(elapsed.Milliseconds()))
}

func (m *PlacementMetrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.Notifications.WithLabelValues(channel, status).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
