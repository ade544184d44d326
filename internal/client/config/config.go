package config

import "time"

// Config holds runtime settings for the terminal client.
//
// ReconcileTimeout bounds the check of a saved credential at start-up;
// zero waits for the server as long as it takes.
type Config struct {
	ServerURL           string
	DataDir             string
	OnlineCheckInterval time.Duration
	ReconcileTimeout    time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DataDir = ".ocrdesk"
	c.OnlineCheckInterval = 3 * time.Second
	c.ReconcileTimeout = 0
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
