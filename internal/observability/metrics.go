package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketConnectionsTotal is the gauge of active notification connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moim_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moim_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationDeliveries counts notification push attempts by outcome
	// (delivered, no_live_channel, publish_error).
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moim_notification_deliveries_total",
		Help: "Notification push attempts by delivery outcome",
	}, []string{"outcome"})

	// AIDraftRequests counts generative-API calls by kind and result
	// (ok, fallback).
	AIDraftRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moim_ai_draft_requests_total",
		Help: "AI drafting requests by kind and result",
	}, []string{"kind", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moim_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
