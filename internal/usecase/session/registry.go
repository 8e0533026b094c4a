package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"class-booking/internal/pkg/clock"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/reservation"

	"github.com/google/uuid"
)

type Session struct {
	ID         string
	Controller *reservation.Controller
	CreatedAt  time.Time

	lastSeen time.Time
}

type Registry interface {
	Open() *Session
	Get(id string) (*Session, error)
	Close(id string) error
	Sweep(now time.Time) int
	Len() int
	Run(ctx context.Context, interval time.Duration)
}

type registryImpl struct {
	slots     reservation.SlotSource
	committer reservation.Committer
	opts      reservation.Options
	idleTTL   time.Duration
	clock     clock.Clock
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(
	slots reservation.SlotSource,
	committer reservation.Committer,
	opts reservation.Options,
	idleTTL time.Duration,
	clk clock.Clock,
	logger *slog.Logger,
) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registryImpl{
		slots:     slots,
		committer: committer,
		opts:      opts,
		idleTTL:   idleTTL,
		clock:     clk,
		logger:    logger.With(slog.String("component", "session_registry")),
		sessions:  map[string]*Session{},
	}
}

func (r *registryImpl) Open() *Session {
	id := uuid.NewString()
	now := r.clock.Now()
	s := &Session{
		ID: id,
		Controller: reservation.NewController(r.slots, r.committer, r.clock, r.opts,
			r.logger.With(slog.String("session_id", id))),
		CreatedAt: now,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Debug("session opened", slog.String("session_id", id))
	return s
}

// Get returns the session and marks it as active.
func (r *registryImpl) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrSessionNotFound, "session %s", id)
	}
	s.lastSeen = r.clock.Now()
	return s, nil
}

func (r *registryImpl) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return errs.Wrapf(errs.ErrSessionNotFound, "session %s", id)
	}
	if err := s.Controller.Cancel(); err != nil {
		r.logger.Debug("session closed mid-submit", slog.String("session_id", id))
	}
	return nil
}

// Sweep drops sessions idle for longer than the TTL. Sessions with a submit in
// flight are kept until it finishes.
func (r *registryImpl) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) <= r.idleTTL {
			continue
		}
		if s.Controller.State() == reservation.StateSubmitting {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	if removed > 0 {
		r.logger.Info("expired idle sessions", slog.Int("count", removed))
	}
	return removed
}

func (r *registryImpl) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps on every tick until ctx is cancelled.
func (r *registryImpl) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.clock.Now())
		}
	}
}
