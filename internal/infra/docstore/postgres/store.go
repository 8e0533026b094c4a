// Package postgres stores documents as JSONB rows and publishes changes
// through LISTEN/NOTIFY.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"class-booking/internal/infra"
	"class-booking/internal/infra/docstore/jsondoc"
	"class-booking/internal/infra/docstore/notify"
	"class-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangeChannel is the NOTIFY channel; the payload is the collection name.
const ChangeChannel = "docstore_changes"

const (
	listSQL = `SELECT id::text, fields FROM documents
WHERE collection = $1
ORDER BY created_at, id`

	updateSQL = `UPDATE documents
SET fields = fields || $3::jsonb, updated_at = clock_timestamp()
WHERE collection = $1 AND id = $2::uuid`

	updateIfSQL = `UPDATE documents
SET fields = fields || $3::jsonb, updated_at = clock_timestamp()
WHERE collection = $1 AND id = $2::uuid AND fields @> $4::jsonb`

	existsSQL = `SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2::uuid)`

	insertSQL = `INSERT INTO documents (collection, fields)
VALUES ($1, $2::jsonb)
RETURNING id::text`

	notifySQL = `SELECT pg_notify($1, $2)`
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool   *pgxpool.Pool
	feed   *notify.Broadcaster
	logger *slog.Logger

	listenMu sync.Mutex
	stop     context.CancelFunc
	done     chan struct{}
}

// New wraps pool. The pool stays owned by the caller.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		feed:   notify.NewBroadcaster(),
		logger: logger.With(slog.String("component", "docstore_postgres")),
	}
}

func (s *Store) ListAll(ctx context.Context, collection string) ([]shared.Document, error) {
	return s.list(ctx, s.pool, collection)
}

func (s *Store) Subscribe(ctx context.Context, collection string, onChange func([]shared.Document)) (shared.Unsubscribe, error) {
	if err := s.ensureListener(); err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, collection, onChange, s.lister(collection))
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return s.runInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.update(ctx, tx, collection, id, fields)
	})
}

func (s *Store) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return s.runInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.updateIf(ctx, tx, collection, id, expect, set)
	})
}

func (s *Store) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	var id string
	err := s.runInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = s.insert(ctx, tx, collection, fields)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx shared.TxWriter) error) error {
	return s.runInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txWriter{store: s, tx: tx})
	})
}

// Close stops the change listener. It does not close the pool.
func (s *Store) Close() error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.stop != nil {
		s.stop()
		<-s.done
		s.stop = nil
	}
	return nil
}

func (s *Store) list(ctx context.Context, db dbtx, collection string) ([]shared.Document, error) {
	rows, err := db.Query(ctx, listSQL, collection)
	if err != nil {
		return nil, s.classify(err, "list documents")
	}
	defer rows.Close()

	docs := []shared.Document{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, s.classify(err, "scan document")
		}
		fields, err := jsondoc.Decode(raw)
		if err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "decode document", err)
		}
		docs = append(docs, shared.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err, "iterate documents")
	}
	return docs, nil
}

func (s *Store) update(ctx context.Context, db dbtx, collection, id string, fields shared.Fields) error {
	patch, err := jsondoc.Encode(fields)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode patch", err)
	}
	docID, err := s.parseID(id)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, updateSQL, collection, docID, patch)
	if err != nil {
		return s.classify(err, "update document")
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(s.logger, infra.KindNotFound, "document not found", nil)
	}
	return s.publish(ctx, db, collection)
}

func (s *Store) updateIf(ctx context.Context, db dbtx, collection, id string, expect, set shared.Fields) error {
	patch, err := jsondoc.Encode(set)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode patch", err)
	}
	want, err := jsondoc.Encode(expect)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode precondition", err)
	}

	docID, err := s.parseID(id)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, updateIfSQL, collection, docID, patch, want)
	if err != nil {
		return s.classify(err, "conditional update")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, existsSQL, collection, docID).Scan(&exists); err != nil {
			return s.classify(err, "check document")
		}
		if !exists {
			return infra.WrapRepoErr(s.logger, infra.KindNotFound, "document not found", nil)
		}
		return infra.WrapRepoErr(s.logger, infra.KindPreconditionFailed, "document changed", nil)
	}
	return s.publish(ctx, db, collection)
}

func (s *Store) insert(ctx context.Context, db dbtx, collection string, fields shared.Fields) (string, error) {
	body, err := jsondoc.Encode(fields)
	if err != nil {
		return "", infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "encode document", err)
	}
	var id string
	if err := db.QueryRow(ctx, insertSQL, collection, body).Scan(&id); err != nil {
		return "", s.classify(err, "insert document")
	}
	return id, s.publish(ctx, db, collection)
}

// publish queues a notification that Postgres delivers on commit.
func (s *Store) publish(ctx context.Context, db dbtx, collection string) error {
	if _, err := db.Exec(ctx, notifySQL, ChangeChannel, collection); err != nil {
		return s.classify(err, "notify change")
	}
	return nil
}

func (s *Store) lister(collection string) notify.Lister {
	return func(ctx context.Context) ([]shared.Document, error) {
		return s.list(ctx, s.pool, collection)
	}
}

// Ids are uuids; anything else cannot name a stored document.
func (s *Store) parseID(id string) (uuid.UUID, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "document not found", err)
	}
	return docID, nil
}

func (s *Store) classify(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, msg, err)
		case pgerrcode.InvalidTextRepresentation:
			// malformed uuid: no such document
			return infra.WrapRepoErr(s.logger, infra.KindNotFound, msg, err)
		}
	}
	return infra.WrapRepoErr(s.logger, infra.KindDBFailure, msg, err)
}

type txWriter struct {
	store *Store
	tx    pgx.Tx
}

func (t *txWriter) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return t.store.update(ctx, t.tx, collection, id, fields)
}

func (t *txWriter) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return t.store.updateIf(ctx, t.tx, collection, id, expect, set)
}

func (t *txWriter) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	return t.store.insert(ctx, t.tx, collection, fields)
}
