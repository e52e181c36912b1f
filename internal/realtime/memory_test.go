package realtime

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers("a"))

	require.NoError(t, b.Publish(ctx, "a", []byte("hello")))
	require.NoError(t, b.Publish(ctx, "b", []byte("elsewhere")))
	assert.Equal(t, "hello", string(<-sub.C))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, b.Subscribers("a"))

	_, ok := <-sub.C
	assert.False(t, ok)

	assert.NoError(t, b.Publish(ctx, "a", []byte("after close")))
}

func TestPGRelay_Forward(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()
	relay := NewPGRelay(nil, b, zerolog.Nop())

	sub, err := b.Subscribe(ctx, CommentsTopic("p1"))
	require.NoError(t, err)
	defer sub.Close()

	payload := `{"project_id":"p1","event":{"type":"DELETE","new":null,"old":{"id":"c1"}}}`
	require.NoError(t, relay.Forward(ctx, payload))
	assert.JSONEq(t, `{"type":"DELETE","new":null,"old":{"id":"c1"}}`, string(<-sub.C))

	assert.Error(t, relay.Forward(ctx, `not json`))
	assert.Error(t, relay.Forward(ctx, `{"event":{"type":"INSERT"}}`))
}
