package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/memodiary/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they may be written as "3s" or as nanoseconds.
// Absent keys keep the value from the previous layer.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	AccessToken         string         `json:"access_token"`
	CacheDSN            string         `json:"cache_dsn"`
	LogFile             string         `json:"log_file"`
	LogLevel            string         `json:"log_level"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AutoSyncInterval    timex.Duration `json:"auto_sync_interval"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	PageSize            int            `json:"page_size"`
	MaxRetries          int            `json:"max_retries"`
	BackoffInitial      timex.Duration `json:"backoff_initial"`
	BackoffMax          timex.Duration `json:"backoff_max"`
}

// parseJSON overlays cfg with the JSON file at path. An empty path is a
// no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.CacheDSN, jc.CacheDSN)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AutoSyncInterval.Duration != 0 {
		cfg.AutoSyncInterval = jc.AutoSyncInterval.Duration
	}
	if jc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.MaxRetries != 0 {
		cfg.MaxRetries = jc.MaxRetries
	}
	if jc.BackoffInitial.Duration != 0 {
		cfg.BackoffInitial = jc.BackoffInitial.Duration
	}
	if jc.BackoffMax.Duration != 0 {
		cfg.BackoffMax = jc.BackoffMax.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
