package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exposes the chat and auth metrics. All record methods
// are nil-safe so wiring can pass a nil collector when monitoring is
// disabled.
type PrometheusCollector struct {
	sessionsActive prometheus.Gauge
	roomsTotal     prometheus.Counter

	connectionsTotal       prometheus.Counter
	messagesBroadcastTotal prometheus.Counter
	framesDroppedTotal     *prometheus.CounterVec

	authRequestDuration *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "roomcast_sessions_active",
			Help: "Number of live websocket sessions",
		}),

		roomsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomcast_rooms_created_total",
			Help: "Total number of broadcast rooms created",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomcast_connections_total",
			Help: "Total number of websocket connections accepted",
		}),

		messagesBroadcastTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomcast_messages_broadcast_total",
			Help: "Total number of chat messages fanned out to rooms",
		}),

		framesDroppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomcast_frames_dropped_total",
			Help: "Frames dropped because a subscriber or session buffer was full",
		}, []string{"stage"}),

		authRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roomcast_auth_request_duration_seconds",
			Help:    "Duration of auth operations",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation"}),
	}
}

func (p *PrometheusCollector) RecordSessionStarted() {
	if p == nil {
		return
	}
	p.sessionsActive.Inc()
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) RecordSessionEnded() {
	if p == nil {
		return
	}
	p.sessionsActive.Dec()
}

func (p *PrometheusCollector) RecordRoomOpened() {
	if p == nil {
		return
	}
	p.roomsTotal.Inc()
}

func (p *PrometheusCollector) RecordMessageBroadcast() {
	if p == nil {
		return
	}
	p.messagesBroadcastTotal.Inc()
}

// RecordFrameDropped counts a lossy-delivery drop. Stage is "room" for the
// per-subscriber fan-out buffer and "session" for the per-connection
// outbound buffer.
func (p *PrometheusCollector) RecordFrameDropped(stage string) {
	if p == nil {
		return
	}
	p.framesDroppedTotal.WithLabelValues(stage).Inc()
}

func (p *PrometheusCollector) RecordAuthRequest(operation string, duration time.Duration) {
	if p == nil {
		return
	}
	p.authRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
