package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/auth/apikey"
	"github.com/nordweb/portal/pkg/auth/jwt"
	"github.com/nordweb/portal/pkg/auth/noop"
	"github.com/nordweb/portal/pkg/blob"
	blobfs "github.com/nordweb/portal/pkg/blob/fs"
	blobmem "github.com/nordweb/portal/pkg/blob/memory"
	"github.com/nordweb/portal/pkg/config"
	"github.com/nordweb/portal/pkg/mail"
	"github.com/nordweb/portal/pkg/mail/httpapi"
	"github.com/nordweb/portal/pkg/mail/logmail"
	"github.com/nordweb/portal/pkg/storage"
	"github.com/nordweb/portal/pkg/storage/memory"
	"github.com/nordweb/portal/pkg/storage/postgres"
	"github.com/nordweb/portal/pkg/storage/sqlite"
)

// openStore connects the configured relational store. migrate forces
// PostgreSQL migrations; SQLite always migrates on open.
func openStore(ctx context.Context, cfg config.StorageConfig, migrate bool) (storage.Store, error) {
	switch cfg.Type {
	case "postgres":
		s, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			MigrateOnStart:  migrate || cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	case "memory":
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func openBlobs(cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Type {
	case "fs":
		s, err := blobfs.New(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("opening document store: %w", err)
		}
		return s, nil
	case "memory":
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob type %q", cfg.Type)
	}
}

func newMailer(cfg config.MailConfig) (mail.Mailer, error) {
	switch cfg.Type {
	case "httpapi":
		m, err := httpapi.New(httpapi.Config{
			Endpoint:   cfg.Endpoint,
			ServiceID:  cfg.ServiceID,
			TemplateID: cfg.TemplateID,
			PublicKey:  cfg.PublicKey,
			PrivateKey: cfg.PrivateKey,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("creating mailer: %w", err)
		}
		return m, nil
	case "log":
		return logmail.New(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown mail type %q", cfg.Type)
	}
}

// newTokens builds the session token signer. In development mode without
// a configured secret a random one is generated, so sessions do not survive
// a restart.
func newTokens(cfg config.AuthConfig) (*jwt.Authenticator, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 && cfg.DevIdentity != nil {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		slog.Warn("no auth.jwt_secret configured, using an ephemeral secret",
			"fingerprint", hex.EncodeToString(secret[:4]))
	}
	return jwt.New(jwt.Config{
		Secret:       secret,
		TTL:          cfg.TokenTTL,
		CookieName:   cfg.CookieName,
		SecureCookie: cfg.SecureCookie,
	})
}

// newAuthChain orders the authenticators: session tokens, then API keys,
// then the development identity if configured.
func newAuthChain(cfg config.AuthConfig, tokens *jwt.Authenticator) *auth.AuthChain {
	chain := &auth.AuthChain{Authenticators: []auth.Authenticator{tokens}}

	if len(cfg.APIKeys) > 0 {
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			role := api.RoleAdmin
			if k.Role != "" {
				role, _ = api.ParseRole(k.Role)
			}
			entries = append(entries, apikey.RawKeyEntry{
				Key:      k.Key,
				Identity: auth.Identity{Subject: k.Subject, Role: role},
			})
		}
		chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
		slog.Info("api keys loaded", "count", len(entries))
	}

	if d := cfg.DevIdentity; d != nil {
		role, _ := api.ParseRole(d.Role)
		chain.Authenticators = append(chain.Authenticators, noop.New(auth.Identity{
			Subject: d.Subject,
			Email:   d.Email,
			Role:    role,
		}))
		slog.Warn("development identity enabled, every request is authenticated",
			"subject", d.Subject, "role", role)
	}

	return chain
}
