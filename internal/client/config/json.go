package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ocrdesk/internal/flagx"
	"github.com/dmitrijs2005/ocrdesk/internal/timex"
)

// JsonConfig is used only for unmarshalling. Pointer fields tell an absent
// key from a zero value.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	DataDir             *string         `json:"data_dir"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	ReconcileTimeout    *timex.Duration `json:"reconcile_timeout"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It
// panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ReconcileTimeout != nil {
		cfg.ReconcileTimeout = jc.ReconcileTimeout.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
