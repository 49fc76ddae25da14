package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, NORDWEB_CONFIG env, ./config.yaml, /etc/nordweb/config.yaml)
//  3. NORDWEB_* environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. NORDWEB_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/nordweb/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("NORDWEB_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/nordweb/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps NORDWEB_* environment variables to config fields.
// Malformed numbers and durations are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	env := envReader{}

	env.int("NORDWEB_PORT", &cfg.Server.Port)
	env.str("NORDWEB_STORAGE", &cfg.Storage.Type)
	env.str("NORDWEB_POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	env.str("NORDWEB_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	env.str("NORDWEB_BLOB", &cfg.Blob.Type)
	env.str("NORDWEB_BLOB_ROOT", &cfg.Blob.Root)

	env.str("NORDWEB_JWT_SECRET", &cfg.Auth.JWTSecret)
	env.duration("NORDWEB_TOKEN_TTL", &cfg.Auth.TokenTTL)
	env.bool("NORDWEB_SECURE_COOKIE", &cfg.Auth.SecureCookie)
	env.bool("NORDWEB_BOOTSTRAP_OWNER", &cfg.Auth.BootstrapOwner)

	env.str("NORDWEB_MAIL", &cfg.Mail.Type)
	env.str("NORDWEB_MAIL_ENDPOINT", &cfg.Mail.Endpoint)
	env.str("NORDWEB_MAIL_SERVICE_ID", &cfg.Mail.ServiceID)
	env.str("NORDWEB_MAIL_TEMPLATE_ID", &cfg.Mail.TemplateID)
	env.str("NORDWEB_MAIL_PUBLIC_KEY", &cfg.Mail.PublicKey)
	env.str("NORDWEB_MAIL_PRIVATE_KEY", &cfg.Mail.PrivateKey)
	env.str("NORDWEB_CONTACT_RECIPIENT", &cfg.Contact.Recipient)

	env.str("NORDWEB_SITE_CONTENT", &cfg.Site.ContentFile)
	env.str("NORDWEB_BASE_URL", &cfg.Site.BaseURL)

	env.str("NORDWEB_LOG_FORMAT", &cfg.Log.Format)

	// NORDWEB_API_KEYS: JSON array of API key configs.
	if v := os.Getenv("NORDWEB_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err != nil {
			env.errs = append(env.errs, fmt.Errorf("NORDWEB_API_KEYS: %w", err))
		} else if len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}

	return env.err()
}

// envReader collects parse failures while applying overrides.
type envReader struct {
	errs []error
}

func (e *envReader) str(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func (e *envReader) int(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v := os.Getenv(name); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = d
	}
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// auth.jwt_secret_file -> auth.jwt_secret
	if cfg.Auth.JWTSecretFile != "" && cfg.Auth.JWTSecret == "" {
		val, err := readSecretFile(cfg.Auth.JWTSecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt_secret_file: %w", err)
		}
		cfg.Auth.JWTSecret = val
	}

	// auth.api_keys[*].key_file -> auth.api_keys[*].key
	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	// mail.private_key_file -> mail.private_key
	if cfg.Mail.PrivateKeyFile != "" && cfg.Mail.PrivateKey == "" {
		val, err := readSecretFile(cfg.Mail.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("mail.private_key_file: %w", err)
		}
		cfg.Mail.PrivateKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
