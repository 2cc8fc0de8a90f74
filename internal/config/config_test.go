package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ModeProcess, cfg.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Zero(t, cfg.Pace)
	assert.Zero(t, cfg.PhaseTimeout)
	assert.Equal(t, "none", cfg.Archive.Format)
	require.NoError(t, cfg.Validate())
}

func TestDefaultYAML_MatchesDefault(t *testing.T) {
	cfg, err := Parse([]byte(DefaultYAML()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Normalizes(t *testing.T) {
	cfg, err := Parse([]byte("mode: THREAD\nlog:\n  level: Debug\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeThread, cfg.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twincoder.yaml")
	doc := "mode: thread\npace: 250ms\narchive:\n  format: zstd\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeThread, cfg.Mode)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Pace)
	assert.Equal(t, "zstd", cfg.Archive.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"mode":     "mode: fork\n",
		"level":    "log:\n  level: loud\n",
		"format":   "log:\n  format: xml\n",
		"archive":  "archive:\n  format: gzip\n",
		"duration": "pace: soon\n",
		"negative": "phase_timeout: -1s\n",
		"rate":     "archive:\n  rate: -5\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Mode = ModeThread
	cfg.Pace = Duration(time.Second)
	cfg.PhaseTimeout = Duration(90 * time.Second)

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pace: 1s")

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
