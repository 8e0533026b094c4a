package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, store connection, etc.)
// - default: Values common across all environments (collections, timeouts, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	DB      DBConfig
	Redis   RedisConfig
	Booking BookingConfig
	Session SessionConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

type StoreConfig struct {
	Driver             string        `envconfig:"STORE_DRIVER" default:"postgres"`
	DSN                string        `envconfig:"STORE_DSN" default:"class-booking.db"` // sqlite file path
	Timeout            time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	SlotsCollection    string        `envconfig:"SLOTS_COLLECTION" default:"class"`
	BookingsCollection string        `envconfig:"BOOKINGS_COLLECTION" default:"bookings"`
}

type DBConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName          string        `envconfig:"DB_NAME" default:"class_booking"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone        string        `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

const (
	PolicyDirect = "direct"
	PolicySplit  = "split"
	PolicyAtomic = "atomic"

	SyncListen = "listen"
	SyncPoll   = "poll"
)

type BookingConfig struct {
	Policy         string `envconfig:"BOOKING_POLICY" default:"split"`
	SyncMode       string `envconfig:"BOOKING_SYNC_MODE" default:"listen"`
	CompareAndSwap bool   `envconfig:"BOOKING_COMPARE_AND_SWAP" default:"false"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,X-Session-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	File           string `envconfig:"LOG_FILE" default:""` // empty means stdout only
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c BookingConfig) Validate() error {
	switch c.Policy {
	case PolicyDirect, PolicySplit, PolicyAtomic:
	default:
		return fmt.Errorf("unknown BOOKING_POLICY %q", c.Policy)
	}
	switch c.SyncMode {
	case SyncListen, SyncPoll:
	default:
		return fmt.Errorf("unknown BOOKING_SYNC_MODE %q", c.SyncMode)
	}
	return nil
}

func (c StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverPostgres, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Driver)
	}
	if c.SlotsCollection == "" || c.BookingsCollection == "" {
		return fmt.Errorf("collection names must not be empty")
	}
	if c.SlotsCollection == c.BookingsCollection {
		return fmt.Errorf("slots and bookings collections must differ")
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Store.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.Booking.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadCLIConfig reads every section except Server, which only the HTTP
// server needs. Command-line flags are applied on top by the caller.
func LoadCLIConfig() (Config, error) {
	var cfg Config
	sections := []any{&cfg.Store, &cfg.DB, &cfg.Redis, &cfg.Booking, &cfg.Session, &cfg.Log}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return Config{}, fmt.Errorf("failed to process env config: %w", err)
		}
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Store: StoreConfig{
			Driver:             DriverMemory,
			Timeout:            2 * time.Second,
			SlotsCollection:    "class",
			BookingsCollection: "bookings",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,
			MinConns: 1,
		},
		Booking: BookingConfig{
			Policy:   PolicySplit,
			SyncMode: SyncPoll,
		},
		Session: SessionConfig{
			IdleTTL:       time.Minute,
			SweepInterval: time.Second,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
	}
}
