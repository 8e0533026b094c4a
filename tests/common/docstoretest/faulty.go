//go:build unit || e2e

package docstoretest

import (
	"context"
	"sync"

	"class-booking/internal/infra/docstore/memory"
	"class-booking/internal/usecase/shared"
)

// Faulty wraps the in-memory store and can fail or hold writes on demand.
type Faulty struct {
	*memory.Store

	mu        sync.Mutex
	listErr   error
	insertErr error
	updateErr error
	gate      chan struct{}
	entered   chan struct{}
	inserts   int
	updates   int
}

func NewFaulty() *Faulty {
	return &Faulty{Store: memory.New(nil)}
}

func (f *Faulty) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *Faulty) FailInsert(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErr = err
}

func (f *Faulty) FailUpdate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

// HoldWrites blocks every write until release is called. entered receives
// once per write that reached the gate.
func (f *Faulty) HoldWrites() (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	f.entered = make(chan struct{}, 16)
	var once sync.Once
	return f.entered, func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Writes counts the inserts and updates that reached the inner store.
func (f *Faulty) Writes() (inserts, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts, f.updates
}

func (f *Faulty) ListAll(ctx context.Context, collection string) ([]shared.Document, error) {
	f.mu.Lock()
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.ListAll(ctx, collection)
}

func (f *Faulty) Subscribe(ctx context.Context, collection string, onChange func([]shared.Document)) (shared.Unsubscribe, error) {
	f.mu.Lock()
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.Subscribe(ctx, collection, onChange)
}

func (f *Faulty) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	if err := f.beforeUpdate(ctx); err != nil {
		return err
	}
	return f.Store.UpdateFields(ctx, collection, id, fields)
}

func (f *Faulty) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	if err := f.beforeUpdate(ctx); err != nil {
		return err
	}
	return f.Store.UpdateFieldsIf(ctx, collection, id, expect, set)
}

func (f *Faulty) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	if err := f.beforeInsert(ctx); err != nil {
		return "", err
	}
	return f.Store.Insert(ctx, collection, fields)
}

func (f *Faulty) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx shared.TxWriter) error) error {
	return f.Store.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		return fn(ctx, &faultyTx{inner: tx, f: f})
	})
}

func (f *Faulty) beforeInsert(ctx context.Context) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	return nil
}

func (f *Faulty) beforeUpdate(ctx context.Context) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	return nil
}

// wait rejects a done context the way network drivers do, then blocks on
// the gate while writes are held.
func (f *Faulty) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	entered <- struct{}{}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type faultyTx struct {
	inner shared.TxWriter
	f     *Faulty
}

func (t *faultyTx) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	if err := t.f.beforeUpdate(ctx); err != nil {
		return err
	}
	return t.inner.UpdateFields(ctx, collection, id, fields)
}

func (t *faultyTx) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	if err := t.f.beforeUpdate(ctx); err != nil {
		return err
	}
	return t.inner.UpdateFieldsIf(ctx, collection, id, expect, set)
}

func (t *faultyTx) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	if err := t.f.beforeInsert(ctx); err != nil {
		return "", err
	}
	return t.inner.Insert(ctx, collection, fields)
}
