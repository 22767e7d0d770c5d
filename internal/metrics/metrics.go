package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections_active",
		Help: "Live socket connections currently registered with the hub.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Events fanned out by the hub, by event name.",
	}, []string{"event"})

	AuthRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_auth_rejections_total",
		Help: "Handshakes rejected for missing or invalid credentials.",
	})
)
