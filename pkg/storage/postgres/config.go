package postgres

import "time"

// Config holds the connection pool settings for the portal database.
type Config struct {
	// DSN is a libpq URL or keyword string.
	DSN string

	// MaxConns caps the pool. A portal this size rarely needs more than
	// the default of 10.
	MaxConns int32

	// MinConns keeps warm connections for the dashboard. Default: 1.
	MinConns int32

	// MaxConnLifetime recycles connections. Default: 30 minutes.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime closes idle connections. Default: 5 minutes.
	MaxConnIdleTime time.Duration

	// MigrateOnStart applies the goose migrations inside New.
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.MinConns <= 0 {
		c.MinConns = 1
	}
	if c.MinConns > c.MaxConns {
		c.MinConns = c.MaxConns
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = 5 * time.Minute
	}
}
