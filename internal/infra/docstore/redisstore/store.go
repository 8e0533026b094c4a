// Package redisstore keeps one JSON string per document and announces changes on
// a pub/sub channel per collection.
package redisstore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"class-booking/internal/infra"
	"class-booking/internal/infra/docstore/jsondoc"
	"class-booking/internal/infra/docstore/notify"
	"class-booking/internal/usecase/shared"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	docPrefix     = "doc:"      // doc:{collection}:{id} -> JSON fields
	indexPrefix   = "docs:"     // docs:{collection} -> zset of ids scored by insert order
	seqPrefix     = "docseq:"   // docseq:{collection} -> insert counter
	channelPrefix = "docstore:" // docstore:{collection} -> change announcements

	maxWatchRetries = 5
)

func docKey(collection, id string) string { return docPrefix + collection + ":" + id }
func indexKey(collection string) string   { return indexPrefix + collection }
func seqKey(collection string) string     { return seqPrefix + collection }
func channel(collection string) string    { return channelPrefix + collection }

type Store struct {
	client *redis.Client
	feed   *notify.Broadcaster
	logger *slog.Logger

	listenMu sync.Mutex
	pubsub   *redis.PubSub
	done     chan struct{}
}

// New wraps client. The client stays owned by the caller.
func New(client *redis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		feed:   notify.NewBroadcaster(),
		logger: logger.With(slog.String("component", "docstore_redis")),
	}
}

func (s *Store) ListAll(ctx context.Context, collection string) ([]shared.Document, error) {
	ids, err := s.client.ZRange(ctx, indexKey(collection), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "list document ids", err)
	}
	docs := make([]shared.Document, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "read documents", err)
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// indexed but deleted
			continue
		}
		fields, err := jsondoc.Decode([]byte(raw))
		if err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "decode document", err)
		}
		docs = append(docs, shared.Document{ID: ids[i], Fields: fields})
	}
	return docs, nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, onChange func([]shared.Document)) (shared.Unsubscribe, error) {
	if err := s.ensureListener(ctx); err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, collection, onChange, func(ctx context.Context) ([]shared.Document, error) {
		return s.ListAll(ctx, collection)
	})
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		return tx.UpdateFields(ctx, collection, id, fields)
	})
}

func (s *Store) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		return tx.UpdateFieldsIf(ctx, collection, id, expect, set)
	})
}

func (s *Store) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	var id string
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		var err error
		id, err = tx.Insert(ctx, collection, fields)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RunInTransaction watches every document fn reads and applies the staged
// writes in one MULTI/EXEC. A concurrent change to a watched key reruns fn.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx shared.TxWriter) error) error {
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			w := newTxWriter(s, rtx)
			if err := fn(ctx, w); err != nil {
				return err
			}
			return w.commit(ctx)
		})
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("watched key changed, retrying", slog.Int("attempt", attempt+1))
			continue
		}
		return err
	}
	return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "transaction kept conflicting", redis.TxFailedErr)
}

// Close stops the change listener. It does not close the client.
func (s *Store) Close() error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	<-s.done
	s.pubsub = nil
	return err
}

// ensureListener subscribes to the change channels unless already done. A
// failed attempt is not remembered; the next call tries again.
func (s *Store) ensureListener(ctx context.Context) error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.pubsub != nil {
		return nil
	}

	ps := s.client.PSubscribe(ctx, channelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "subscribe to changes", err)
	}
	done := make(chan struct{})
	s.pubsub, s.done = ps, done
	go s.listen(ps.Channel(), done)
	return nil
}

func (s *Store) listen(ch <-chan *redis.Message, done chan<- struct{}) {
	defer close(done)
	for msg := range ch {
		collection := strings.TrimPrefix(msg.Channel, channelPrefix)
		err := s.feed.Notify(context.Background(), collection, func(ctx context.Context) ([]shared.Document, error) {
			return s.ListAll(ctx, collection)
		})
		if err != nil {
			s.logger.Warn("change notification failed",
				slog.String("collection", collection),
				slog.String("error", err.Error()))
		}
	}
}

type stagedInsert struct {
	collection string
	id         string
	body       []byte
}

type txWriter struct {
	store   *Store
	rtx     *redis.Tx
	staged  map[string]shared.Fields // doc key -> fields after this tx
	order   []string
	inserts []stagedInsert
	touched map[string]struct{}
}

func newTxWriter(s *Store, rtx *redis.Tx) *txWriter {
	return &txWriter{
		store:   s,
		rtx:     rtx,
		staged:  map[string]shared.Fields{},
		touched: map[string]struct{}{},
	}
}

func (w *txWriter) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return w.update(ctx, collection, id, nil, fields)
}

func (w *txWriter) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return w.update(ctx, collection, id, expect, set)
}

func (w *txWriter) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	body, err := jsondoc.Encode(fields)
	if err != nil {
		return "", infra.WrapRepoErr(w.store.logger, infra.KindInvalidDocument, "encode document", err)
	}
	id := uuid.NewString()
	w.inserts = append(w.inserts, stagedInsert{collection: collection, id: id, body: body})
	w.touched[collection] = struct{}{}
	return id, nil
}

func (w *txWriter) update(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	logger := w.store.logger
	key := docKey(collection, id)

	current, ok := w.staged[key]
	if !ok {
		// WATCH before GET so a write in between aborts EXEC
		if err := w.rtx.Watch(ctx, key).Err(); err != nil {
			return infra.WrapRepoErr(logger, infra.KindDBFailure, "watch document", err)
		}
		raw, err := w.rtx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return infra.WrapRepoErr(logger, infra.KindNotFound, "document not found", nil)
		}
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindDBFailure, "read document", err)
		}
		current, err = jsondoc.Decode(raw)
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "decode document", err)
		}
		w.order = append(w.order, key)
	}

	if expect != nil {
		want, err := jsondoc.Normalize(expect)
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode precondition", err)
		}
		if !jsondoc.Matches(current, want) {
			return infra.WrapRepoErr(logger, infra.KindPreconditionFailed, "document changed", nil)
		}
	}
	patch, err := jsondoc.Normalize(set)
	if err != nil {
		return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode patch", err)
	}
	w.staged[key] = jsondoc.Merge(current, patch)
	w.touched[collection] = struct{}{}
	return nil
}

func (w *txWriter) commit(ctx context.Context) error {
	logger := w.store.logger
	if len(w.touched) == 0 {
		return nil
	}

	scores := make([]int64, len(w.inserts))
	for i, ins := range w.inserts {
		n, err := w.rtx.Incr(ctx, seqKey(ins.collection)).Result()
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindDBFailure, "allocate insert order", err)
		}
		scores[i] = n
	}

	bodies := make(map[string][]byte, len(w.order))
	for _, key := range w.order {
		body, err := jsondoc.Encode(w.staged[key])
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode document", err)
		}
		bodies[key] = body
	}

	_, err := w.rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, key := range w.order {
			p.Set(ctx, key, bodies[key], 0)
		}
		for i, ins := range w.inserts {
			p.Set(ctx, docKey(ins.collection, ins.id), ins.body, 0)
			p.ZAdd(ctx, indexKey(ins.collection), &redis.Z{Score: float64(scores[i]), Member: ins.id})
		}
		for c := range w.touched {
			p.Publish(ctx, channel(c), "changed")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		return infra.WrapRepoErr(logger, infra.KindDBFailure, "commit writes", err)
	}
	return nil
}
