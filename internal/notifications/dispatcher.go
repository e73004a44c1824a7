package notifications

import (
	"context"

	"moim/internal/observability"
)

// DeliveryOutcome describes what happened to a live push attempt. Storage
// of the notification row is the caller's responsibility and always
// precedes delivery.
type DeliveryOutcome string

const (
	// OutcomeDelivered means the payload reached at least one live connection
	// or was handed to Redis for another instance to deliver.
	OutcomeDelivered DeliveryOutcome = "delivered"
	// OutcomeNoLiveChannel means the user has no open connection anywhere;
	// the notification waits in storage until the next fetch.
	OutcomeNoLiveChannel DeliveryOutcome = "no_live_channel"
	// OutcomePublishError means Redis publish failed; the stored row is
	// still intact so nothing is lost.
	OutcomePublishError DeliveryOutcome = "publish_error"
)

// Dispatcher pushes notification payloads toward live connections. When a
// Notifier is present the payload goes through Redis so every instance can
// deliver; otherwise only the local hub is consulted.
type Dispatcher struct {
	hub      *Hub
	notifier *Notifier
}

// NewDispatcher wires a dispatcher to the local hub and an optional notifier.
func NewDispatcher(hub *Hub, notifier *Notifier) *Dispatcher {
	return &Dispatcher{hub: hub, notifier: notifier}
}

// Deliver attempts a best-effort live push of payload to userID. Failures
// never surface to the triggering operation; the outcome is returned for
// logging and counted in metrics.
func (d *Dispatcher) Deliver(ctx context.Context, userID uint, payload string) DeliveryOutcome {
	outcome := d.deliver(ctx, userID, payload)
	observability.NotificationDeliveries.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (d *Dispatcher) deliver(ctx context.Context, userID uint, payload string) DeliveryOutcome {
	if d.notifier != nil {
		if err := d.notifier.PublishUser(ctx, userID, payload); err != nil {
			// Fall back to the local hub before giving up.
			if d.hub != nil && d.hub.Broadcast(userID, payload) > 0 {
				return OutcomeDelivered
			}
			return OutcomePublishError
		}
		if d.hub == nil || !d.hub.IsOnline(userID) {
			// Published fine, but this instance can't tell whether another
			// instance holds a connection. Treat a locally offline user as
			// having no live channel; the row is already stored.
			if d.hub != nil {
				return OutcomeNoLiveChannel
			}
		}
		return OutcomeDelivered
	}
	if d.hub != nil && d.hub.Broadcast(userID, payload) > 0 {
		return OutcomeDelivered
	}
	return OutcomeNoLiveChannel
}
