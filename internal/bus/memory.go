package bus

import (
	"sync"

	"github.com/desertthunder/grabbit/internal/models"
)

// MemoryBus is an in-process [Bus] used when the daemon connection is down
// and throughout the tests. Publish calls deliver synchronously, so ordering
// matches publish order by construction.
type MemoryBus struct {
	mu       sync.Mutex
	closed   bool
	nextID   int
	queueFns map[int]func(models.QueueSnapshot)
	dropFns  map[int]func(string)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		queueFns: make(map[int]func(models.QueueSnapshot)),
		dropFns:  make(map[int]func(string)),
	}
}

func (b *MemoryBus) SubscribeQueue(fn func(models.QueueSnapshot)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.queueFns[id] = fn

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.queueFns, id)
	}}
}

func (b *MemoryBus) SubscribeDrops(fn func(string)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.dropFns[id] = fn

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.dropFns, id)
	}}
}

// PublishQueue delivers a snapshot to all queue subscribers.
func (b *MemoryBus) PublishQueue(snapshot models.QueueSnapshot) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fns := make([]func(models.QueueSnapshot), 0, len(b.queueFns))
	for _, fn := range b.queueFns {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// PublishDrop delivers a drop payload to all drop subscribers.
func (b *MemoryBus) PublishDrop(payload string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fns := make([]func(string), 0, len(b.dropFns))
	for _, fn := range b.dropFns {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.queueFns = make(map[int]func(models.QueueSnapshot))
	b.dropFns = make(map[int]func(string))
	return nil
}
