package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the room lifecycle engine.
//
// Naming convention: namespace_subsystem_name
// - namespace: muuzika (application-level grouping)
// - subsystem: websocket, room, http (feature-level grouping)
// - name: specific metric (connections_active, events_total, etc.)
//
// Metric Types:
// - Gauge: Current state (connections, rooms, remaining codes)
// - Counter: Cumulative events (messages processed, errors)
// - Histogram: Latency distributions (processing time)

var (
	// ActiveWebSocketConnections tracks the current number of active WebSocket connections.
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "muuzika",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of live rooms.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "muuzika",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// RoomCodesAvailable tracks how many room codes remain unissued.
	RoomCodesAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "muuzika",
		Subsystem: "room",
		Name:      "codes_available",
		Help:      "Number of room codes currently unissued",
	})

	// WebsocketEvents tracks the total number of WebSocket events processed.
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muuzika",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total WebSocket events processed",
	}, []string{"event_type", "status"})

	// MessageProcessingDuration tracks the time spent processing a client command.
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "muuzika",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing a client command",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"command_type"})

	// HTTPRequestsTotal tracks lobby HTTP endpoint outcomes.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muuzika",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total lobby HTTP requests by route and status",
	}, []string{"route", "status"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
