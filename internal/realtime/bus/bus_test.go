package bus

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

func TestMemoryBusDelivers(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []realtime.GraphEvent
	require.NoError(t, b.StartForwarder(ctx, func(ev realtime.GraphEvent) { got = append(got, ev) }))

	id := uuid.New()
	require.NoError(t, b.Publish(ctx, realtime.GraphEvent{Event: realtime.EventDocumentVersionChanged, EntityID: id, OldVersion: 1, NewVersion: 2}))
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].EntityID)
	assert.Equal(t, 2, got[0].NewVersion)

	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(ctx, realtime.GraphEvent{}))
}

func TestMemoryBusRequiresCallback(t *testing.T) {
	assert.Error(t, NewMemoryBus().StartForwarder(context.Background(), nil))
}

func TestNewWithoutAddrIsMemory(t *testing.T) {
	b, err := New(RedisConfig{}, logger.Nop())
	require.NoError(t, err)
	_, ok := b.(*memoryBus)
	assert.True(t, ok)
}
