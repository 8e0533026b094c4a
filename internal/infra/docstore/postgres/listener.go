package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"class-booking/internal/infra"

	"github.com/jackc/pgx/v5"
)

const relistenDelay = time.Second

// ensureListener starts the LISTEN loop if it is not running and waits until
// the first LISTEN succeeded, so no change after Subscribe returns is missed.
// A failed start leaves nothing behind and the next call tries again.
func (s *Store) ensureListener() error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.stop != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan error, 1)
	done := make(chan struct{})
	go s.listen(ctx, ready, done)
	if err := <-ready; err != nil {
		cancel()
		<-done
		return err
	}
	s.stop, s.done = cancel, done
	return nil
}

func (s *Store) listen(ctx context.Context, ready chan<- error, done chan<- struct{}) {
	defer close(done)

	first := true
	for {
		err := s.listenSession(ctx, func() {
			if first {
				ready <- nil
				first = false
				return
			}
			// notifications may have been lost while reconnecting
			for _, c := range s.feed.Collections() {
				s.refresh(ctx, c)
			}
		})
		if ctx.Err() != nil {
			if first {
				ready <- ctx.Err()
			}
			return
		}
		if first {
			ready <- infra.WrapRepoErr(s.logger, infra.KindDBFailure, "listen for changes", err)
			return
		}
		s.logger.Warn("change listener disconnected",
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(relistenDelay):
		}
	}
}

func (s *Store) listenSession(ctx context.Context, onListening func()) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangeChannel}.Sanitize()); err != nil {
		return err
	}
	onListening()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// the conn may be mid-wait; drop it rather than return it to the pool
				_ = conn.Conn().Close(context.Background())
			}
			return err
		}
		s.refresh(ctx, n.Payload)
	}
}

func (s *Store) refresh(ctx context.Context, collection string) {
	if err := s.feed.Notify(ctx, collection, s.lister(collection)); err != nil && ctx.Err() == nil {
		s.logger.Warn("change notification failed",
			slog.String("collection", collection),
			slog.String("error", err.Error()))
	}
}
