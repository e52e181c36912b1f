package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBroker(client), mr
}

func recv(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	b, mr := newBroker(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, CommentsTopic("p1"))
	require.NoError(t, err)
	defer sub.Close()

	other, err := b.Subscribe(ctx, CommentsTopic("p2"))
	require.NoError(t, err)
	defer other.Close()

	assert.Contains(t, mr.PubSubChannels(""), "rt:project_comments:p1")

	require.NoError(t, b.Publish(ctx, CommentsTopic("p1"), []byte(`{"type":"INSERT"}`)))
	assert.JSONEq(t, `{"type":"INSERT"}`, string(recv(t, sub)))

	select {
	case msg := <-other.C:
		t.Fatalf("unexpected message on other topic: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscription_CloseReleases(t *testing.T) {
	b, mr := newBroker(t)
	ctx := context.Background()

	before := testutil.ToFloat64(activeSubscriptions)
	sub, err := b.Subscribe(ctx, CommentsTopic("p1"))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(activeSubscriptions))

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
	assert.Equal(t, before, testutil.ToFloat64(activeSubscriptions))

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}

	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub("rt:project_comments:p1")["rt:project_comments:p1"] == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRedisBroker_SubscribeFailsWhenDown(t *testing.T) {
	b, mr := newBroker(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := b.Subscribe(ctx, CommentsTopic("p1"))
	assert.Error(t, err)
}
