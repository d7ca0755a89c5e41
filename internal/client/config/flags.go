package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-l", "-i", "-s"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string   address and port of the backend server
//	-t string   access token sent with every request
//	-d string   cache database path
//	-l string   log file path
//	-i int      online check interval (seconds)
//	-s int      auto-sync interval (seconds, 0 disables)
//
// args is filtered down to these flags first, so switches owned by other
// loaders (-c) do not stop parsing.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("memodiary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "cache database path")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	autoSyncInterval := fs.Int("s", int(cfg.AutoSyncInterval.Seconds()), "auto-sync interval (in seconds, 0 disables)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// sub-second values from earlier layers survive unless the flag is given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "s":
			cfg.AutoSyncInterval = time.Duration(*autoSyncInterval) * time.Second
		}
	})
	return nil
}
