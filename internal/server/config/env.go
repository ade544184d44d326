package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/ocrdesk/internal/flagx"
)

const (
	envListenAddr    = "OCRDESK_LISTEN_ADDR"
	envDatabaseDSN   = "OCRDESK_DATABASE_DSN"
	envSecretKey     = "OCRDESK_SECRET_KEY"
	envTokenValidity = "OCRDESK_TOKEN_VALIDITY"
	envAllowedOrigin = "OCRDESK_ALLOWED_ORIGIN"
	envLogLevel      = "OCRDESK_LOG_LEVEL"
)

// defaultEnvFile is read when -e/-env is not given. A missing file is fine.
var defaultEnvFile = ".env"

// parseEnv overlays cfg with OCRDESK_* variables. Values come from the
// dotenv file first; the process environment wins over the file. The file
// is read, not loaded, so the process environment is left untouched.
func parseEnv(cfg *Config) {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		vars = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	if v, ok := lookup(envListenAddr); ok {
		cfg.ListenAddr = v
	}
	if v, ok := lookup(envDatabaseDSN); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := lookup(envSecretKey); ok {
		cfg.SecretKey = v
	}
	if v, ok := lookup(envTokenValidity); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.AccessTokenValidityDuration = d
	}
	if v, ok := lookup(envAllowedOrigin); ok {
		cfg.AllowedOrigin = v
	}
	if v, ok := lookup(envLogLevel); ok {
		cfg.LogLevel = v
	}
}
