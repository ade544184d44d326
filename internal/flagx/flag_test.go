package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags and positionals dropped",
			args:         []string{"-x", "1", "-y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-t"},
			allowedFlags: []string{"-t"},
			want:         []string{"-t"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-a", "-d", "/tmp/data"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", "-d", "/tmp/data"},
		},
		{
			name:         "order and repeats preserved",
			args:         []string{"-a", "http://one", "-l", "debug", "-a", "http://two"},
			allowedFlags: []string{"-a", "-l"},
			want:         []string{"-a", "http://one", "-l", "debug", "-a", "http://two"},
		},
		{
			name:         "empty args",
			args:         nil,
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", "http://api", "-c", "/etc/ocrdesk.json"}
	assert.Equal(t, "/etc/ocrdesk.json", JsonConfigFlags())

	os.Args = []string{"testbin", "-config=/etc/other.json"}
	assert.Equal(t, "/etc/other.json", JsonConfigFlags())

	os.Args = []string{"testbin", "-x", "1"}
	assert.Empty(t, JsonConfigFlags())

	os.Args = []string{"testbin", "-c", "/1.json", "-config", "/2.json"}
	assert.Equal(t, "/2.json", JsonConfigFlags())
}

func TestEnvFileFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-e", "prod.env", "-c", "conf.json"}
	assert.Equal(t, "prod.env", EnvFileFlags())

	os.Args = []string{"testbin", "-env", "dev.env"}
	assert.Equal(t, "dev.env", EnvFileFlags())

	os.Args = []string{"testbin"}
	assert.Empty(t, EnvFileFlags())
}
