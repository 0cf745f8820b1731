package hvsp

import (
	"time"

	"github.com/moffa90/go-hvsp/part"
)

// DefaultPollAttempts is the number of SDO polls before a write times out.
const DefaultPollAttempts = 50

// DefaultSettleDelay is the wait between powering the target and raising 12V.
const DefaultSettleDelay = 50 * time.Millisecond

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during paged writes (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Catalog resolves signatures to parts
	Catalog *part.Catalog

	// SettleDelay is the wait after enabling power
	SettleDelay time.Duration

	// PollAttempts is the number of SDO reads before ErrTimeout
	PollAttempts int

	// PollInterval is the wait between SDO reads
	PollInterval time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Catalog:      part.Default,
		SettleDelay:  DefaultSettleDelay,
		PollAttempts: DefaultPollAttempts,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track paged writes.
//
// Example:
//
//	sess := hvsp.New(bus,
//	    hvsp.WithProgressCallback(func(p hvsp.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
//
// Example:
//
//	sess := hvsp.New(bus, hvsp.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCatalog replaces the built-in part catalog.
func WithCatalog(catalog *part.Catalog) Option {
	return func(c *Config) {
		if catalog != nil {
			c.Catalog = catalog
		}
	}
}

// WithSettleDelay sets the wait between enabling power and raising 12V.
//
// Example:
//
//	sess := hvsp.New(bus, hvsp.WithSettleDelay(100*time.Millisecond))
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}

// WithPollAttempts sets how many times SDO is read while waiting for a write
// to finish. Default is 50.
func WithPollAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollAttempts = n
		}
	}
}

// WithPollInterval sets the wait between SDO reads. Default is none; the bus
// round trip is usually long enough.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}
