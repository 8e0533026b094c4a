package shared

import (
	"context"
	"maps"
)

// Fields is the field map of one document. Values are JSON-compatible.
type Fields map[string]any

func (f Fields) Clone() Fields {
	return maps.Clone(f)
}

type Document struct {
	ID     string
	Fields Fields
}

// Unsubscribe releases a subscription. Implementations tolerate repeated calls.
type Unsubscribe func()

// DocumentStore is the capability the booking flow needs from a hosted document database.
type DocumentStore interface {
	ListAll(ctx context.Context, collection string) ([]Document, error)
	// Subscribe delivers a full snapshot right after registration and after every
	// mutation of the collection until the returned handle is invoked.
	Subscribe(ctx context.Context, collection string, onChange func([]Document)) (Unsubscribe, error)
	UpdateFields(ctx context.Context, collection, id string, fields Fields) error
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
}

// ConditionalUpdater applies set only while every key of expect still holds its value.
// A mismatch is reported as an infra.KindPreconditionFailed error.
type ConditionalUpdater interface {
	UpdateFieldsIf(ctx context.Context, collection, id string, expect, set Fields) error
}

// TxWriter is the write surface available inside a transaction.
type TxWriter interface {
	UpdateFields(ctx context.Context, collection, id string, fields Fields) error
	UpdateFieldsIf(ctx context.Context, collection, id string, expect, set Fields) error
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
}

// Transactor runs fn atomically: either every write inside it becomes visible or none does.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx TxWriter) error) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
