package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/flagx"
)

// Config holds runtime settings for the memodiary CLI.
type Config struct {
	ServerEndpointAddr string `env:"SERVER_ADDR"`
	AccessToken        string `env:"ACCESS_TOKEN"`
	CacheDSN           string `env:"CACHE_DSN"`
	LogFile            string `env:"LOG_FILE"`
	LogLevel           string `env:"LOG_LEVEL"`

	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	// AutoSyncInterval is the period of the background sync loop; zero
	// disables it.
	AutoSyncInterval time.Duration `env:"AUTO_SYNC_INTERVAL"`
	RemoteTimeout    time.Duration `env:"REMOTE_TIMEOUT"`

	PageSize       int           `env:"PAGE_SIZE"`
	MaxRetries     int           `env:"MAX_RETRIES"`
	BackoffInitial time.Duration `env:"BACKOFF_INITIAL"`
	BackoffMax     time.Duration `env:"BACKOFF_MAX"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CacheDSN = "memodiary.db"
	c.LogFile = "memodiary.log"
	c.LogLevel = "info"
	c.OnlineCheckInterval = 3 * time.Second
	c.AutoSyncInterval = 30 * time.Second
	c.RemoteTimeout = 10 * time.Second
	c.PageSize = 100
	c.MaxRetries = 10
	c.BackoffInitial = time.Second
	c.BackoffMax = 5 * time.Minute
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then MEMODIARY_* environment variables, then flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, flagx.ConfigPath(args)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.ServerEndpointAddr) == "":
		return fmt.Errorf("server address is required")
	case strings.TrimSpace(c.CacheDSN) == "":
		return fmt.Errorf("cache dsn is required")
	case c.OnlineCheckInterval <= 0:
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	case c.AutoSyncInterval < 0:
		return fmt.Errorf("auto-sync interval must not be negative, got %s", c.AutoSyncInterval)
	}
	_, err := c.Level()
	return err
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
