// Package notify fans collection snapshots out to subscribers.
package notify

import (
	"context"
	"sync"

	"class-booking/internal/usecase/shared"
)

// Lister reads the current contents of one collection.
type Lister func(ctx context.Context) ([]shared.Document, error)

// Broadcaster delivers full snapshots to the subscribers of a collection.
// Deliveries are serialized so a subscriber never sees an older snapshot
// after a newer one. Callbacks must not write to the store synchronously.
type Broadcaster struct {
	dispatch sync.Mutex

	mu   sync.Mutex
	subs map[string]map[uint64]func([]shared.Document)
	next uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string]map[uint64]func([]shared.Document){}}
}

// Subscribe registers fn and hands it the current snapshot before returning.
func (b *Broadcaster) Subscribe(ctx context.Context, collection string, fn func([]shared.Document), list Lister) (shared.Unsubscribe, error) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	docs, err := list(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.next++
	id := b.next
	if b.subs[collection] == nil {
		b.subs[collection] = map[uint64]func([]shared.Document){}
	}
	b.subs[collection][id] = fn
	b.mu.Unlock()

	fn(docs)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[collection], id)
			if len(b.subs[collection]) == 0 {
				delete(b.subs, collection)
			}
			b.mu.Unlock()
		})
	}, nil
}

// Notify lists the collection and delivers the snapshot. It does nothing
// when nobody listens.
func (b *Broadcaster) Notify(ctx context.Context, collection string, list Lister) error {
	if !b.Has(collection) {
		return nil
	}

	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	docs, err := list(ctx)
	if err != nil {
		return err
	}
	for _, fn := range b.subscribers(collection) {
		fn(docs)
	}
	return nil
}

func (b *Broadcaster) Has(collection string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[collection]) > 0
}

// Collections lists every collection with at least one subscriber.
func (b *Broadcaster) Collections() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.subs))
	for c := range b.subs {
		out = append(out, c)
	}
	return out
}

func (b *Broadcaster) subscribers(collection string) []func([]shared.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fns := make([]func([]shared.Document), 0, len(b.subs[collection]))
	for _, fn := range b.subs[collection] {
		fns = append(fns, fn)
	}
	return fns
}
