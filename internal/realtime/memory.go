package realtime

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker for tests and single-binary tools.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan []byte]struct{})}
}

// Publish drops the payload for subscribers whose buffer is full.
func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[topic] {
		select {
		case ch <- append([]byte(nil), payload...):
		default:
		}
	}
	published.WithLabelValues("ok").Inc()
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, topic string) (*Subscription, error) {
	ch := make(chan []byte, 16)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	return newSubscription(ch, func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], ch)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
		close(ch)
		return nil
	}), nil
}

// Subscribers reports the number of open subscriptions on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
