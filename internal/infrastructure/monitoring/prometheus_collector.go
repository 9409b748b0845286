package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exposes dashboard runtime metrics.
type PrometheusCollector struct {
	clientsConnected prometheus.Gauge
	eventsPublished  *prometheus.CounterVec
	framesDropped    prometheus.Counter
	channelsTotal    prometheus.Gauge
	usersTotal       prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		clientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamdash_clients_connected",
			Help: "Number of websocket clients currently connected",
		}),

		eventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamdash_events_published_total",
			Help: "Events published through the fan-out hub",
		}, []string{"topic", "kind"}),

		framesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamdash_frames_dropped_total",
			Help: "Frames dropped because a client sink was full",
		}),

		channelsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamdash_channels_total",
			Help: "Channels currently in the registry",
		}),

		usersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamdash_users_total",
			Help: "User accounts currently in the registry",
		}),

		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamdash_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamdash_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
}

func (p *PrometheusCollector) RecordClientConnected() {
	p.clientsConnected.Inc()
}

func (p *PrometheusCollector) RecordClientDisconnected() {
	p.clientsConnected.Dec()
}

func (p *PrometheusCollector) RecordEventPublished(topic, kind string) {
	p.eventsPublished.WithLabelValues(topic, kind).Inc()
}

func (p *PrometheusCollector) RecordFrameDropped() {
	p.framesDropped.Inc()
}

func (p *PrometheusCollector) SetChannelCount(n int) {
	p.channelsTotal.Set(float64(n))
}

func (p *PrometheusCollector) SetUserCount(n int) {
	p.usersTotal.Set(float64(n))
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route, status string, seconds float64) {
	p.httpRequests.WithLabelValues(method, route, status).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(seconds)
}
