package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"moim/internal/observability"
)

const (
	userChannelPrefix = "notifications:user:"
	userChannelGlob   = userChannelPrefix + "*"
	broadcastChannel  = "notifications:broadcast"
)

// UserChannel returns the Redis channel carrying notifications for a user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// Notifier fans notification payloads out across server instances via
// Redis pub/sub. Each instance subscribes to the user channel pattern and
// pushes matching payloads to its locally connected websockets.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier backed by the given Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser publishes payload on the user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return fmt.Errorf("publish notification for user %d: %w", userID, err)
	}
	return nil
}

// PublishBroadcast publishes payload to every connected user on every instance.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if err := n.rdb.Publish(ctx, broadcastChannel, payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return fmt.Errorf("publish broadcast: %w", err)
	}
	return nil
}

// StartPatternSubscriber subscribes to all notification channels and
// invokes handle for each received message. It returns once the
// subscription is confirmed; delivery continues on a background goroutine
// until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, handle func(channel, payload string)) error {
	sub := n.rdb.PSubscribe(ctx, userChannelGlob, broadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		observability.RedisErrorRate.WithLabelValues("subscribe").Inc()
		return fmt.Errorf("subscribe to notification channels: %w", err)
	}

	ch := sub.Channel()
	go func() {
		defer func() {
			if err := sub.Close(); err != nil {
				log.Printf("close notification subscription: %v", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handle(msg.Channel, msg.Payload)
			}
		}
	}()
	return nil
}
