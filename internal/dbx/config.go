package dbx

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Network path preferences for reaching the database instance.
const (
	NetworkPathPublic  = "public"
	NetworkPathPrivate = "private"
)

// Config holds the connection settings for the declaration database.
// The credential material is treated as opaque: it is read once at startup
// and handed to the dialer unchanged.
type Config struct {
	Host        string
	PrivateHost string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
	NetworkPath string // "public" (default) or "private"
}

// ConfigFromEnv builds a Config from environment variables. Missing required
// settings are a fatal configuration error: callers are expected to abort
// startup rather than retry.
//
//	DB_HOST, DB_PRIVATE_HOST, DB_PORT, DB_USER, DB_PASSWORD (or
//	DB_PASSWORD_FILE), DB_NAME, DB_SSLMODE, DB_NETWORK_PATH
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Host:        os.Getenv("DB_HOST"),
		PrivateHost: os.Getenv("DB_PRIVATE_HOST"),
		Port:        getenv("DB_PORT", "5432"),
		User:        os.Getenv("DB_USER"),
		Password:    os.Getenv("DB_PASSWORD"),
		Database:    os.Getenv("DB_NAME"),
		SSLMode:     os.Getenv("DB_SSLMODE"),
		NetworkPath: normalizeNetworkPath(os.Getenv("DB_NETWORK_PATH")),
	}

	if cfg.Password == "" {
		if path := os.Getenv("DB_PASSWORD_FILE"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return Config{}, fmt.Errorf("reading DB_PASSWORD_FILE: %w", err)
			}
			cfg.Password = strings.TrimSpace(string(raw))
		}
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if cfg.User == "" {
		missing = append(missing, "DB_USER")
	}
	if cfg.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if cfg.Database == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing database configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// EffectiveHost returns the host the dialer should use, honouring the
// private network path preference when a private address is configured.
func (c Config) EffectiveHost() string {
	if c.NetworkPath == NetworkPathPrivate && c.PrivateHost != "" {
		return c.PrivateHost
	}
	return c.Host
}

// DSN renders the config as a postgres connection URL.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.EffectiveHost() + ":" + c.Port,
		Path:   "/" + c.Database,
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func normalizeNetworkPath(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), NetworkPathPrivate) {
		return NetworkPathPrivate
	}
	return NetworkPathPublic
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
