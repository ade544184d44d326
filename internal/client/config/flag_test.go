package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://10.0.0.1:9090", "-d", "/tmp/x", "-i", "10", "-t", "30", "-l", "debug"},
			expected: &Config{
				ServerURL:           "http://10.0.0.1:9090",
				DataDir:             "/tmp/x",
				OnlineCheckInterval: 10 * time.Second,
				ReconcileTimeout:    30 * time.Second,
				LogLevel:            "debug",
			},
		},
		{
			name:     "config flag is ignored here",
			args:     []string{"cmd", "-c", "cfg.json", "-t", "0"},
			expected: defaults(),
		},
		{name: "incorrect check interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "1s"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
