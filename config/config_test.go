package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.Equal(t, "roster.db", cfg.Database.Path)
	assert.Equal(t, "fr-labor-code", cfg.Compliance.Preset)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  allowed_origins: ["https://planning.example.com"]
database:
  path: ":memory:"
compliance:
  preset: fr-hcr
  workers: 4
sweep:
  enabled: true
  interval: 15m
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://planning.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "fr-hcr", cfg.Compliance.Preset)
	assert.Equal(t, 4, cfg.Compliance.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
}

func TestLoad_EmptyFileGetsDefaults(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "empty.yaml", ""))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "fr-labor-code", cfg.Compliance.Preset)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
	assert.False(t, cfg.Sweep.Enabled)
}

func TestLoad_RulesFileKeepsPresetEmpty(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "c.yaml", "compliance:\n  rules_file: rules.yaml\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Compliance.Preset)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"negative workers", "compliance:\n  workers: -2\n"},
		{"bad interval", "sweep:\n  interval: hourly\n"},
		{"negative interval", "sweep:\n  interval: -5m\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "c.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRulesDocument(t *testing.T) {
	none := config.ComplianceConfig{Preset: "fr-hcr"}
	doc, err := none.RulesDocument()
	require.NoError(t, err)
	assert.Empty(t, doc)

	path := writeFile(t, "rules.yaml", "max_daily_hours: 9\n")
	doc, err = config.ComplianceConfig{RulesFile: path}.RulesDocument()
	require.NoError(t, err)
	assert.Equal(t, "max_daily_hours: 9\n", doc)
}
