package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geodrop_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Realtime metrics
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geodrop_ws_connections",
			Help: "Currently registered websocket connections",
		},
	)

	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geodrop_rooms_active",
			Help: "Rooms with at least one member",
		},
	)

	CommandsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_commands_total",
			Help: "Client commands processed by the hub",
		},
		[]string{"kind"},
	)

	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_events_delivered_total",
			Help: "Events queued to client connections",
		},
		[]string{"kind"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_events_dropped_total",
			Help: "Events dropped because a client buffer was full",
		},
		[]string{"kind"},
	)

	FramesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_frames_rejected_total",
			Help: "Inbound websocket frames dropped at the gateway",
		},
		[]string{"reason"}, // "malformed", "invalid", "rate_limited"
	)

	// Collaborator metrics
	PostCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geodrop_post_cache_results_total",
			Help: "Post cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geodrop_posts_created_total",
			Help: "Total posts created",
		},
	)
)
