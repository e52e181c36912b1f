package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces realtime channels: rt:project_comments:{project_id}
const ChannelPrefix = "rt:"

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, ChannelPrefix+topic, payload).Err(); err != nil {
		published.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	published.WithLabelValues("ok").Inc()
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, so events
// published after it returns are not missed.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, ChannelPrefix+topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan []byte, 16)
	done := make(chan struct{})
	in := ps.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-done:
					return
				}
			}
		}
	}()

	return newSubscription(out, func() error {
		close(done)
		return ps.Close()
	}), nil
}
