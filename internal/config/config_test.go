package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "credentials.json", cfg.Sheets.CredentialsFile)
				assert.Equal(t, 5, cfg.Sheets.Retries)
				assert.Equal(t, 2*time.Second, cfg.Sheets.InitialDelay)
				assert.False(t, cfg.Sheets.StrictFetch)
				assert.Equal(t, time.Hour, cfg.Downloads.TTL)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "yaml overlays defaults",
			file: `
server:
  port: 9090
sheets:
  retries: 3
  initial_delay: 500ms
  strict_fetch: true
downloads:
  ttl: 15m
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 3, cfg.Sheets.Retries)
				assert.Equal(t, 500*time.Millisecond, cfg.Sheets.InitialDelay)
				assert.True(t, cfg.Sheets.StrictFetch)
				assert.Equal(t, 15*time.Minute, cfg.Downloads.TTL)
				// untouched sections keep their defaults
				assert.Equal(t, "credentials.json", cfg.Sheets.CredentialsFile)
				assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
			},
		},
		{
			name: "env takes precedence over yaml",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"REPORTS_SERVER_PORT":             "7070",
				"REPORTS_SHEETS_CREDENTIALS_FILE": "/etc/reports/sa.json",
				"REPORTS_SHEETS_RATE_PER_MINUTE":  "0",
				"REPORTS_LOGGING_LEVEL":           "debug",
				"REPORTS_SERVER_ALLOWED_ORIGINS":  "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "/etc/reports/sa.json", cfg.Sheets.CredentialsFile)
				assert.Equal(t, 0, cfg.Sheets.RatePerMinute)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"REPORTS_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "zero retries",
			file:    "sheets:\n  retries: 0\n",
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"REPORTS_LOGGING_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"REPORTS_SHEETS_INITIAL_DELAY": "soon"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidatePongAfterPing(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.PongWait = cfg.WebSocket.PingPeriod
	assert.Error(t, cfg.Validate())
}
