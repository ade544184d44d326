// Package config handles configuration for the accounts server: defaults,
// a JSON file, the environment (optionally seeded from a .env file) and
// command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the accounts server.
//
// An empty DatabaseDSN runs the server on in-memory repositories; nothing
// survives a restart in that mode.
type Config struct {
	ListenAddr                  string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	AllowedOrigin               string
	LogLevel                    string
}

// LoadDefaults populates c with development defaults. With no SecretKey the
// server signs with a random per-process key.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8000"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.AllowedOrigin = "http://localhost:3000"
	c.LogLevel = "info"
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
