// Package config loads server settings from the environment and flags.
package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"

	"github.com/zenstudio/backend/internal/storage"
)

// Prefix namespaces environment variables, e.g. STUDIO_WEB_ADDR.
const Prefix = "STUDIO"

// Config is the server configuration.
type Config struct {
	conf.Version
	Web struct {
		Addr                string        `conf:"default:0.0.0.0:3000"`
		ReadTimeout         time.Duration `conf:"default:10s"`
		WriteTimeout        time.Duration `conf:"default:10s"`
		IdleTimeout         time.Duration `conf:"default:120s"`
		ShutdownTimeout     time.Duration `conf:"default:20s"`
		AllowedOrigin       string        `conf:"default:*"`
		SubmitRatePerMinute int           `conf:"default:30"`
		TrustedProxies      int           `conf:"default:1"`
	}
	Store struct {
		Driver      string `conf:"default:file"`
		Path        string `conf:"default:database.json"`
		SQLitePath  string `conf:"default:studio.db"`
		PostgresURL string `conf:"mask"`
		RedisURL    string `conf:"default:redis://localhost:6379/0,mask"`
		RedisPrefix string `conf:"default:studio"`
	}
	Log struct {
		Level  string `conf:"default:INFO"`
		Format string `conf:"default:json"`
	}
}

// Load reads .env (if present) into the environment, then parses
// environment variables and command-line flags into a Config. On
// conf.ErrHelpWanted the returned string holds the usage text.
func Load(build string) (Config, string, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.Version = conf.Version{Build: build, Desc: "Zen Studio record API"}
	help, err := conf.Parse(Prefix, &cfg)
	return cfg, help, err
}

// Storage returns the storage settings.
func (c Config) Storage() storage.Config {
	return storage.Config{
		Driver:      c.Store.Driver,
		Path:        c.Store.Path,
		SQLitePath:  c.Store.SQLitePath,
		PostgresURL: c.Store.PostgresURL,
		RedisURL:    c.Store.RedisURL,
		RedisPrefix: c.Store.RedisPrefix,
	}
}

// String renders the configuration with masked secrets for startup logs.
func (c Config) String() string {
	out, err := conf.String(&c)
	if err != nil {
		return err.Error()
	}
	return out
}
