package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ocrdesk/internal/flagx"
	"github.com/dmitrijs2005/ocrdesk/internal/timex"
)

type JsonConfig struct {
	ListenAddr                  *string         `json:"listen_addr"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	AllowedOrigin               *string         `json:"allowed_origin"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Absent keys keep
// their current value. Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	if jc.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	setString(&cfg.AllowedOrigin, jc.AllowedOrigin)
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
