// Package config provides unified configuration for the Nordweb server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (NORDWEB_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the Nordweb server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Blob          BlobConfig          `yaml:"blob"`
	Auth          AuthConfig          `yaml:"auth"`
	Mail          MailConfig          `yaml:"mail"`
	Contact       ContactConfig       `yaml:"contact"`
	Portal        PortalConfig        `yaml:"portal"`
	Site          SiteConfig          `yaml:"site"`
	Observability ObservabilityConfig `yaml:"observability"`
	Log           LogConfig           `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 60s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`   // JSON bodies, default: 1 MiB
}

// StorageConfig selects and configures the relational store.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "postgres" or "sqlite", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	DSNFile         string        `yaml:"dsn_file"`          // _file variant for dsn
	MaxConns        int32         `yaml:"max_conns"`         // default: 10
	MinConns        int32         `yaml:"min_conns"`         // default: 1
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"` // default: 30m
	MigrateOnStart  bool          `yaml:"migrate_on_start"`  // default: false
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // default: "nordweb.db"
}

// BlobConfig selects where document files live.
type BlobConfig struct {
	Type string `yaml:"type"` // "fs" or "memory", default: "fs"
	Root string `yaml:"root"` // fs root directory, default: "data/documents"
}

// AuthConfig holds session and API key settings.
type AuthConfig struct {
	JWTSecret      string         `yaml:"jwt_secret"`
	JWTSecretFile  string         `yaml:"jwt_secret_file"` // _file variant for jwt_secret
	TokenTTL       time.Duration  `yaml:"token_ttl"`       // default: 24h
	CookieName     string         `yaml:"cookie_name"`     // default: "nordweb_session"
	SecureCookie   bool           `yaml:"secure_cookie"`
	BootstrapOwner bool           `yaml:"bootstrap_owner"` // first sign-up becomes owner, default: true
	BcryptCost     int            `yaml:"bcrypt_cost"`     // default: bcrypt.DefaultCost
	SignInLimit    RateLimit      `yaml:"signin_limit"`    // default: 10 per 15m
	RequestLimit   RateLimit      `yaml:"request_limit"`   // per identity, default: disabled
	APIKeys        []APIKeyConfig `yaml:"api_keys"`

	// DevIdentity authenticates every request as this identity. Development
	// only; never enable in production.
	DevIdentity *DevIdentityConfig `yaml:"dev_identity"`
}

// RateLimit is a fixed-window limit. A zero Limit disables limiting.
type RateLimit struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
	Role    string `yaml:"role"` // default: "admin"
}

// DevIdentityConfig is the fixed identity used in development.
type DevIdentityConfig struct {
	Subject string `yaml:"subject"`
	Email   string `yaml:"email"`
	Role    string `yaml:"role"`
}

// MailConfig selects the transactional mail adapter.
type MailConfig struct {
	Type           string        `yaml:"type"` // "log" or "httpapi", default: "log"
	Endpoint       string        `yaml:"endpoint"`
	ServiceID      string        `yaml:"service_id"`
	TemplateID     string        `yaml:"template_id"`
	PublicKey      string        `yaml:"public_key"`
	PrivateKey     string        `yaml:"private_key"`
	PrivateKeyFile string        `yaml:"private_key_file"` // _file variant for private_key
	Timeout        time.Duration `yaml:"timeout"`          // default: 10s
}

// ContactConfig controls the contact form.
type ContactConfig struct {
	Recipient string    `yaml:"recipient"` // agency inbox
	RateLimit RateLimit `yaml:"rate_limit"`
}

// PortalConfig tunes the portal service.
type PortalConfig struct {
	MaxDocumentBytes int64 `yaml:"max_document_bytes"` // default: 25 MiB
	RecentUpdates    int   `yaml:"recent_updates"`     // default: 10
}

// SiteConfig controls the marketing pages.
type SiteConfig struct {
	ContentFile string `yaml:"content_file"` // empty uses the built-in content
	BaseURL     string `yaml:"base_url"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LogConfig controls the default slog handler.
type LogConfig struct {
	Level      string `yaml:"level"`      // default: "info"
	Format     string `yaml:"format"`     // "text" or "json", default: "text"
	Categories string `yaml:"categories"` // debug categories, comma separated
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			SQLite: SQLiteConfig{
				Path: "nordweb.db",
			},
		},
		Blob: BlobConfig{
			Type: "fs",
			Root: "data/documents",
		},
		Auth: AuthConfig{
			TokenTTL:       24 * time.Hour,
			CookieName:     "nordweb_session",
			BootstrapOwner: true,
			SignInLimit:    RateLimit{Limit: 10, Window: 15 * time.Minute},
		},
		Mail: MailConfig{
			Type:    "log",
			Timeout: 10 * time.Second,
		},
		Contact: ContactConfig{
			RateLimit: RateLimit{Limit: 5, Window: time.Hour},
		},
		Portal: PortalConfig{
			MaxDocumentBytes: 25 << 20,
			RecentUpdates:    10,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
