// Package memory is an in-process document store. It backs tests and
// single-process demos and supports conditional updates and transactions.
package memory

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"class-booking/internal/infra"
	"class-booking/internal/infra/docstore/jsondoc"
	"class-booking/internal/infra/docstore/notify"
	"class-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type entry struct {
	fields shared.Fields
	seq    uint64
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	seq         uint64

	feed   *notify.Broadcaster
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		collections: map[string]map[string]*entry{},
		feed:        notify.NewBroadcaster(),
		logger:      logger.With(slog.String("component", "docstore_memory")),
	}
}

func (s *Store) ListAll(_ context.Context, collection string) ([]shared.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(collection), nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, onChange func([]shared.Document)) (shared.Unsubscribe, error) {
	return s.feed.Subscribe(ctx, collection, onChange, s.lister(collection))
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	s.mu.Lock()
	err := s.update(collection, id, nil, fields)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(ctx, collection)
	return nil
}

func (s *Store) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	s.mu.Lock()
	err := s.update(collection, id, expect, set)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(ctx, collection)
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	s.mu.Lock()
	id, err := s.insert(collection, fields)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.publish(ctx, collection)
	return id, nil
}

// RunInTransaction holds the store lock for the whole of fn. fn must only
// write through tx.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx shared.TxWriter) error) error {
	s.mu.Lock()
	backup := s.snapshot()
	tx := &txWriter{store: s, touched: map[string]struct{}{}}
	if err := fn(ctx, tx); err != nil {
		s.collections = backup
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for c := range tx.touched {
		s.publish(ctx, c)
	}
	return nil
}

// Put stores a document under a caller-chosen id. A replaced document keeps
// its position in list order.
func (s *Store) Put(ctx context.Context, collection, id string, fields shared.Fields) error {
	norm, err := jsondoc.Normalize(fields)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode document", err)
	}
	s.mu.Lock()
	c := s.coll(collection)
	if e, ok := c[id]; ok {
		e.fields = norm
	} else {
		s.seq++
		c[id] = &entry{fields: norm, seq: s.seq}
	}
	s.mu.Unlock()
	s.publish(ctx, collection)
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) list(collection string) []shared.Document {
	entries := s.collections[collection]
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return entries[ids[i]].seq < entries[ids[j]].seq
	})

	docs := make([]shared.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, shared.Document{ID: id, Fields: entries[id].fields.Clone()})
	}
	return docs
}

func (s *Store) update(collection, id string, expect, set shared.Fields) error {
	e, ok := s.collections[collection][id]
	if !ok {
		return infra.WrapRepoErr(s.logger, infra.KindNotFound, "document not found", nil)
	}
	patch, err := jsondoc.Normalize(set)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode patch", err)
	}
	if expect != nil {
		want, err := jsondoc.Normalize(expect)
		if err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode precondition", err)
		}
		if !jsondoc.Matches(e.fields, want) {
			return infra.WrapRepoErr(s.logger, infra.KindPreconditionFailed, "document changed", nil)
		}
	}
	e.fields = jsondoc.Merge(e.fields, patch)
	return nil
}

func (s *Store) insert(collection string, fields shared.Fields) (string, error) {
	norm, err := jsondoc.Normalize(fields)
	if err != nil {
		return "", infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode document", err)
	}
	id := uuid.NewString()
	s.seq++
	s.coll(collection)[id] = &entry{fields: norm, seq: s.seq}
	return id, nil
}

func (s *Store) coll(collection string) map[string]*entry {
	c, ok := s.collections[collection]
	if !ok {
		c = map[string]*entry{}
		s.collections[collection] = c
	}
	return c
}

func (s *Store) snapshot() map[string]map[string]*entry {
	out := make(map[string]map[string]*entry, len(s.collections))
	for name, entries := range s.collections {
		cp := make(map[string]*entry, len(entries))
		for id, e := range entries {
			cp[id] = &entry{fields: maps.Clone(e.fields), seq: e.seq}
		}
		out[name] = cp
	}
	return out
}

func (s *Store) lister(collection string) notify.Lister {
	return func(context.Context) ([]shared.Document, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.list(collection), nil
	}
}

func (s *Store) publish(ctx context.Context, collection string) {
	if err := s.feed.Notify(context.WithoutCancel(ctx), collection, s.lister(collection)); err != nil {
		s.logger.Warn("change notification failed",
			slog.String("collection", collection),
			slog.String("error", err.Error()))
	}
}

type txWriter struct {
	store   *Store
	touched map[string]struct{}
}

func (t *txWriter) UpdateFields(_ context.Context, collection, id string, fields shared.Fields) error {
	if err := t.store.update(collection, id, nil, fields); err != nil {
		return err
	}
	t.touched[collection] = struct{}{}
	return nil
}

func (t *txWriter) UpdateFieldsIf(_ context.Context, collection, id string, expect, set shared.Fields) error {
	if err := t.store.update(collection, id, expect, set); err != nil {
		return err
	}
	t.touched[collection] = struct{}{}
	return nil
}

func (t *txWriter) Insert(_ context.Context, collection string, fields shared.Fields) (string, error) {
	id, err := t.store.insert(collection, fields)
	if err != nil {
		return "", err
	}
	t.touched[collection] = struct{}{}
	return id, nil
}
