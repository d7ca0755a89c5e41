// Package config loads runtime configuration for the memodiary CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. MEMODIARY_* environment variables, e.g. MEMODIARY_SERVER_ADDR,
//     MEMODIARY_ACCESS_TOKEN, MEMODIARY_AUTO_SYNC_INTERVAL=1m.
//  4. Command-line flags (-a, -t, -d, -l, -i, -s).
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "...",
//	  "cache_dsn": "memodiary.db",
//	  "online_check_interval": "3s",
//	  "auto_sync_interval": "30s",
//	  "max_retries": 10
//	}
package config
