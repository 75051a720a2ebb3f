package syncapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_sync_requests_total",
		Help: "Snapshot requests served by the sync endpoint, by result",
	}, []string{"result"})

	syncSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "knowgraph_sync_subscribers",
		Help: "Open change-event websocket connections",
	})

	syncEventsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowgraph_sync_events_total",
		Help: "Change events broadcast to subscribers",
	})
)
