// Package config loads runtime settings from OCGB_* environment variables.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/otel"
	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

const envPrefix = "ocgb"

// Database holds the libsql connection settings. An empty URL means a local
// file in the XDG data directory. It is embedded in Config so its variables
// keep the bare OCGB_ prefix.
type Database struct {
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

type OTEL struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED"`
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE"`
}

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"http://openclimategis.org"`
	CatalogTimeout  time.Duration `envconfig:"CATALOG_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	Debug           bool          `envconfig:"DEBUG"`
	Database
	OTEL
}

// Load reads the environment and fills in the local database default.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		dir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database.URL = "file:" + filepath.Join(dir, "ocgbuilder.db")
	}
	if cfg.CatalogTimeout <= 0 {
		return nil, fmt.Errorf("catalog timeout must be positive, got %s", cfg.CatalogTimeout)
	}
	return &cfg, nil
}

func (c *Config) OTELConfig() otel.Config {
	return otel.Config{
		Enabled:  c.OTEL.Enabled,
		Endpoint: c.OTEL.Endpoint,
		Insecure: c.OTEL.Insecure,
	}
}

// Usage writes the supported environment variables as a table.
func Usage(w io.Writer) error {
	var cfg Config
	return envconfig.Usagef(envPrefix, &cfg, w, envconfig.DefaultTableFormat)
}
