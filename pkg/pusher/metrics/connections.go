package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arnac-io/txcomposer/pkg/pusher/events"
)

var (
	openConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txcomposer_events_open_connections",
		Help: "Number of open websocket connections",
	})
	eventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txcomposer_events_sent_total",
		Help: "Number of events written to websocket connections",
	}, []string{"event"})
	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txcomposer_events_dropped_total",
		Help: "Number of events dropped because a connection fell behind",
	}, []string{"event"})
)

func OpenWebsocketConnection() {
	openConnections.Inc()
}

func CloseWebsocketConnection() {
	openConnections.Dec()
}

func EventSent(name events.Name) {
	eventsSent.WithLabelValues(string(name)).Inc()
}

func EventDropped(name events.Name) {
	eventsDropped.WithLabelValues(string(name)).Inc()
}
