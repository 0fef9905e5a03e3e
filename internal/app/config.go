package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (MALLPRICE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string        `usage:"PostgreSQL connection URL (MALLPRICE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL    string        `default:"" usage:"Redis URL for the price set cache; empty disables caching" flag:"redis-url"`
	CacheTTL    time.Duration `default:"24h" usage:"Lifetime of cached price sets" flag:"cache-ttl"`
	Bulk        BulkConfig
	Graceful    GracefulConfig
}

// BulkConfig limits bulk price requests.
type BulkConfig struct {
	MaxItems int `default:"500" usage:"Maximum items in one bulk request" flag:"bulk-max-items"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then falls back to platform-provided variables.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(skipFlags bool) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: skipFlags,
		EnvPrefix: "MALLPRICE",
		Files:     []string{"config.yaml", "/etc/mall-pricing/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set MALLPRICE_DATABASE_URL or DATABASE_URL")
	case c.Bulk.MaxItems <= 0:
		return errors.Errorf("bulk max items must be positive, got %d", c.Bulk.MaxItems)
	case c.CacheTTL < 0:
		return errors.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// applyPlatformDefaults maps DATABASE_URL, REDIS_URL and PORT, as set by
// hosting platforms, onto unset fields.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RedisURL == "" {
		c.RedisURL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
