package state

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"class-booking/internal/domain/slot"
	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"
)

// Snapshot is an immutable view of the slot list at one version.
type Snapshot struct {
	Slots   []*slot.Slot
	Version uint64
}

// Store owns the authoritative in-memory list of class slots.
type Store struct {
	docs       shared.DocumentStore
	collection string
	logger     *slog.Logger

	mu      sync.RWMutex
	slots   []*slot.Slot
	index   map[string]int
	version uint64

	watchMu   sync.Mutex
	watchers  map[uint64]func(Snapshot)
	nextWatch uint64
}

func NewStore(docs shared.DocumentStore, collection string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:       docs,
		collection: collection,
		logger:     logger.With(slog.String("component", "state_store")),
		index:      map[string]int{},
		watchers:   map[uint64]func(Snapshot){},
	}
}

// Load replaces local state with the remote collection. On failure the prior
// state is left untouched.
func (s *Store) Load(ctx context.Context) error {
	docs, err := s.docs.ListAll(ctx, s.collection)
	if err != nil {
		fetchErr := &shared.FetchError{Op: "load", Collection: s.collection, Err: err}
		s.logger.Warn("Error fetching slots", slog.String("error", err.Error()))
		return fetchErr
	}
	s.replace(docs)
	return nil
}

// Subscribe registers for push updates. Every remote snapshot replaces local
// state and then invokes callback. The caller must Unsubscribe exactly once
// when done; extra calls are ignored.
func (s *Store) Subscribe(ctx context.Context, callback func(Snapshot)) (*Subscription, error) {
	unsubscribe, err := s.docs.Subscribe(ctx, s.collection, func(docs []shared.Document) {
		snap := s.replace(docs)
		if callback != nil {
			callback(snap)
		}
	})
	if err != nil {
		fetchErr := &shared.FetchError{Op: "subscribe", Collection: s.collection, Err: err}
		s.logger.Warn("Error subscribing to slots", slog.String("error", err.Error()))
		return nil, fetchErr
	}
	return newSubscription(func() {
		unsubscribe()
		s.logger.Debug("slot subscription released")
	}), nil
}

// ApplyConfirmedUpdate sets one slot's count without a full reload.
func (s *Store) ApplyConfirmedUpdate(id string, newSlotsLeft int) error {
	left, err := slot.NewSlotsLeft(newSlotsLeft)
	if err != nil {
		return errs.Mark(err, errs.ErrDomainValidation)
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return errs.Wrapf(errs.ErrSlotNotFound, "apply confirmed update for %s", id)
	}
	next := slices.Clone(s.slots)
	next[i] = next[i].WithSlotsLeft(left)
	s.slots = next
	s.version++
	snap := Snapshot{Slots: s.slots, Version: s.version}
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Watch registers a local observer of every state change.
func (s *Store) Watch(fn func(Snapshot)) *Subscription {
	s.watchMu.Lock()
	s.nextWatch++
	id := s.nextWatch
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return newSubscription(func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	})
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Slots: s.slots, Version: s.version}
}

func (s *Store) Slots() []*slot.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.slots)
}

func (s *Store) Get(id string) (*slot.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.slots[i], true
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Collection() string {
	return s.collection
}

func (s *Store) replace(docs []shared.Document) Snapshot {
	slots := make([]*slot.Slot, 0, len(docs))
	index := make(map[string]int, len(docs))
	for _, doc := range docs {
		sl, err := converter.SlotFromDocument(doc)
		if err != nil {
			s.logger.Warn("skipping malformed slot document",
				slog.String("id", doc.ID),
				slog.String("error", err.Error()))
			continue
		}
		index[sl.ID()] = len(slots)
		slots = append(slots, sl)
	}

	s.mu.Lock()
	s.slots = slots
	s.index = index
	s.version++
	snap := Snapshot{Slots: s.slots, Version: s.version}
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

func (s *Store) notify(snap Snapshot) {
	s.watchMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
