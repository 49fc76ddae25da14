package config

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nordweb/portal/pkg/api"
)

// minSecretBytes matches the session token signer's requirement.
const minSecretBytes = 32

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be > 0, got %d", c.Server.MaxBodyBytes))
	}

	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, fmt.Errorf("storage.sqlite.path is required when storage.type is \"sqlite\""))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\", \"postgres\" or \"sqlite\", got %q", c.Storage.Type))
	}

	switch c.Blob.Type {
	case "memory":
	case "fs":
		if c.Blob.Root == "" {
			errs = append(errs, fmt.Errorf("blob.root is required when blob.type is \"fs\""))
		}
	default:
		errs = append(errs, fmt.Errorf("blob.type must be \"fs\" or \"memory\", got %q", c.Blob.Type))
	}

	errs = append(errs, c.Auth.validate()...)

	switch c.Mail.Type {
	case "log":
	case "httpapi":
		if c.Mail.ServiceID == "" {
			errs = append(errs, fmt.Errorf("mail.service_id is required when mail.type is \"httpapi\""))
		}
		if c.Mail.PublicKey == "" {
			errs = append(errs, fmt.Errorf("mail.public_key is required when mail.type is \"httpapi\""))
		}
		if c.Contact.Recipient == "" {
			errs = append(errs, fmt.Errorf("contact.recipient is required when mail.type is \"httpapi\""))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.type must be \"log\" or \"httpapi\", got %q", c.Mail.Type))
	}

	if c.Contact.Recipient != "" {
		if _, err := mail.ParseAddress(c.Contact.Recipient); err != nil {
			errs = append(errs, fmt.Errorf("contact.recipient: %w", err))
		}
	}
	if c.Contact.RateLimit.Limit < 0 {
		errs = append(errs, fmt.Errorf("contact.rate_limit.limit must be >= 0"))
	}

	if c.Portal.MaxDocumentBytes <= 0 {
		errs = append(errs, fmt.Errorf("portal.max_document_bytes must be > 0, got %d", c.Portal.MaxDocumentBytes))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) validate() []error {
	var errs []error

	if a.DevIdentity == nil && len(a.JWTSecret) < minSecretBytes {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretBytes))
	}
	if a.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %v", a.TokenTTL))
	}
	if a.BcryptCost != 0 && (a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be 0 or between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, a.BcryptCost))
	}

	for i, k := range a.APIKeys {
		if k.Key == "" && k.KeyFile == "" {
			errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key or key_file is required", i))
		}
		if k.Subject == "" {
			errs = append(errs, fmt.Errorf("auth.api_keys[%d]: subject is required", i))
		}
		if k.Role != "" {
			if _, err := api.ParseRole(k.Role); err != nil {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d].role: %w", i, err))
			}
		}
	}

	if d := a.DevIdentity; d != nil {
		if d.Subject == "" {
			errs = append(errs, fmt.Errorf("auth.dev_identity.subject is required"))
		}
		if _, err := api.ParseRole(d.Role); err != nil {
			errs = append(errs, fmt.Errorf("auth.dev_identity.role: %w", err))
		}
	}

	return errs
}
