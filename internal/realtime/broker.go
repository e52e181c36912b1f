// Package realtime carries change events from writers to stream subscribers.
package realtime

import (
	"context"
	"sync"
)

// Broker fans payloads published on a topic out to every current subscriber
// of that topic. Delivery is at-most-once.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
}

// Subscription delivers payloads on C until Close is called or the broker
// connection drops, at which point C is closed.
type Subscription struct {
	C <-chan []byte

	once    sync.Once
	release func() error
	err     error
}

func newSubscription(c <-chan []byte, release func() error) *Subscription {
	activeSubscriptions.Inc()
	return &Subscription{C: c, release: release}
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		activeSubscriptions.Dec()
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}

// CommentsTopic is the topic for comment changes on one project.
func CommentsTopic(projectID string) string {
	return "project_comments:" + projectID
}
