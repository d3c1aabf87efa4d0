// metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_matches_started_total",
		Help: "Rooms that entered the playing phase.",
	})

	MatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_matches_completed_total",
		Help: "Rooms that ended by reaching the win threshold.",
	})

	MatchesAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_matches_abandoned_total",
		Help: "Rooms destroyed by a player disconnect before the match ended.",
	})

	PaddleOutOfBounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_paddle_out_of_bounds_total",
		Help: "Paddle inputs that had to be clamped into the valid range.",
	})

	PaddleRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_paddle_rejected_total",
		Help: "Paddle inputs dropped entirely (NaN/Inf).",
	})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_service_frames_dropped_total",
		Help: "Outbound events dropped because a client send buffer was full.",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_service_queue_depth",
		Help: "Players currently waiting in the matchmaking queue.",
	})

	LiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_service_live_rooms",
		Help: "Match rooms currently registered.",
	})
)
