package cli

import (
	"context"
	"log/slog"
	"time"

	"class-booking/internal/infra/docstore"
	"class-booking/internal/pkg/clock"
	"class-booking/internal/pkg/config"
	"class-booking/internal/usecase/catalog"
	"class-booking/internal/usecase/reservation"
	"class-booking/internal/usecase/state"
)

// Globals are the flags shared by every command.
type Globals struct {
	Driver  string `help:"Document store driver." enum:"memory,postgres,redis,sqlite" default:"sqlite" env:"STORE_DRIVER"`
	DSN     string `help:"SQLite database file." default:"class-booking.db" env:"STORE_DSN" type:"path"`
	Policy  string `help:"Booking write policy." enum:"direct,split,atomic" default:"split" env:"BOOKING_POLICY"`
	Sync    string `help:"How slot changes reach the client." enum:"listen,poll" default:"listen" env:"BOOKING_SYNC_MODE"`
	CAS     bool   `name:"cas" help:"Reject a booking when the slot changed since it was read." env:"BOOKING_COMPARE_AND_SWAP"`
	Debug   bool   `help:"Enable debug logging."`
	LogFile string `help:"Write logs to this file (rotated)." type:"path" env:"LOG_FILE"`
}

// Apply overlays the flags on a config loaded from the environment.
func (g Globals) Apply(cfg *config.Config) {
	cfg.Store.Driver = g.Driver
	cfg.Store.DSN = g.DSN
	cfg.Booking.Policy = g.Policy
	cfg.Booking.SyncMode = g.Sync
	cfg.Booking.CompareAndSwap = g.CAS
	cfg.Log.File = g.LogFile
	if g.Debug {
		cfg.Log.Level = "debug"
	}
}

type Context struct {
	Config config.Config
	Logger *slog.Logger
	Clock  clock.Clock

	ctx     context.Context
	backend docstore.Backend
}

func NewContext(ctx context.Context, cfg config.Config, logger *slog.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: logger,
		Clock:  clock.NewRealClock(),
		ctx:    ctx,
	}
}

func (c *Context) Context() context.Context {
	return c.ctx
}

// Backend opens the configured store on first use.
func (c *Context) Backend() (docstore.Backend, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.storeTimeout()*3)
	defer cancel()
	backend, err := docstore.Open(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	c.backend = backend
	return backend, nil
}

func (c *Context) Catalog() (catalog.Catalog, error) {
	backend, err := c.Backend()
	if err != nil {
		return nil, err
	}
	return catalog.NewCatalog(backend, c.Config.Store.SlotsCollection, c.Config.Store.BookingsCollection, c.Logger), nil
}

// Booking wires a state store and controller against the backend.
func (c *Context) Booking(opts reservation.Options) (*state.Store, *reservation.Controller, error) {
	backend, err := c.Backend()
	if err != nil {
		return nil, nil, err
	}
	committer, err := reservation.NewCommitter(backend, opts, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	st := state.NewStore(backend, opts.SlotsCollection, c.Logger)
	return st, reservation.NewController(st, committer, c.Clock, opts, c.Logger), nil
}

// Timeout bounds a single store round trip.
func (c *Context) Timeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, c.storeTimeout())
}

func (c *Context) Close() error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	return err
}

func (c *Context) storeTimeout() time.Duration {
	if c.Config.Store.Timeout > 0 {
		return c.Config.Store.Timeout
	}
	return 10 * time.Second
}
