package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.GraphEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.GraphEvent)) error
	Close() error
}

// memoryBus delivers events synchronously to in-process subscribers. It is
// used when no Redis address is configured and in tests.
type memoryBus struct {
	mu     sync.RWMutex
	subs   map[int]func(realtime.GraphEvent)
	next   int
	closed bool
}

func NewMemoryBus() Bus {
	return &memoryBus{subs: map[int]func(realtime.GraphEvent){}}
}

func (b *memoryBus) Publish(ctx context.Context, ev realtime.GraphEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory bus closed")
	}
	for _, fn := range b.subs {
		fn(ev)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.GraphEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	id := b.next
	b.next++
	b.subs[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(realtime.GraphEvent){}
	return nil
}
