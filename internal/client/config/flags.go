package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered down to the flags known here, so -c/-config can share the
// command line.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the accounts API")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	reconcileTimeout := fs.Int("t", int(cfg.ReconcileTimeout.Seconds()), "saved session check timeout (in seconds, 0 = no limit)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.ReconcileTimeout = time.Duration(*reconcileTimeout) * time.Second
}
