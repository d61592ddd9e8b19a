package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty config returns defaults",
			input:   "",
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "1", cfg.Version)
				assert.Equal(t, 5000, cfg.Discovery.TimeoutMillis)
			},
		},
		{
			name: "overrides install root and timeout",
			input: `version: "1"
install_root: /opt/jn
discovery:
  timeout_ms: 2000`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/opt/jn", cfg.InstallRoot)
				assert.Equal(t, 2000, cfg.Discovery.TimeoutMillis)
			},
		},
		{
			name: "unknown field is rejected",
			input: `version: "1"
bogus_field: true`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFromReader(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/jn.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
