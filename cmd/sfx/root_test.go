package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sfx/audio"
)

var sfxEnv = []string{"SFX_BACKEND", "SFX_VOLUME", "SFX_SAMPLE_RATE", "SFX_BUFFER_MS", "SFX_BASE_URL", "SFX_MAX_BYTES"}

// clearEnv unsets SFX_* for the test, restoring them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range sfxEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Keep the user's own config out of the default search
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("sfx", pflag.ContinueOnError)
	bindGlobalFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	c, err := loadConfig(parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultConfig(), c)
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "sfx.yaml", `
backend: none
sample_rate: 22050
buffer_duration: 50ms
volume: 0.5
base_url: https://file.example.com/
`)
	t.Setenv("SFX_SAMPLE_RATE", "48000")

	c, err := loadConfig(parseFlags(t, "--config", path, "--volume", "20"))
	require.NoError(t, err)

	assert.Equal(t, audio.OutputNone, c.Backend)            // file
	assert.Equal(t, 50*time.Millisecond, c.BufferDuration)  // file
	assert.Equal(t, "https://file.example.com/", c.BaseURL) // file
	assert.Equal(t, 48000, c.SampleRate)                    // env over file
	assert.InDelta(t, 0.2, c.InitialVolume(), 1e-9)         // flag over file
}

func TestLoadConfigDefaultFileInWorkingDir(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	wd, _ := os.Getwd()
	writeFile(t, wd, "sfx.yaml", "backend: pipe\n")

	c, err := loadConfig(parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, audio.OutputPipe, c.Backend)
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	path := writeFile(t, t.TempDir(), "test.env", "SFX_BACKEND=none\nSFX_VOLUME=40\n")

	c, err := loadConfig(parseFlags(t, "--env-file", path, "--backend", "speaker"))
	require.NoError(t, err)
	assert.Equal(t, audio.OutputSpeaker, c.Backend)
	assert.InDelta(t, 0.4, c.InitialVolume(), 1e-9)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	dir := t.TempDir()

	_, err := loadConfig(parseFlags(t, "--config", filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)

	_, err = loadConfig(parseFlags(t, "--env-file", filepath.Join(dir, "missing.env")))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "sample_rate: [1, 2]\n")
	_, err = loadConfig(parseFlags(t, "--config", bad))
	assert.Error(t, err)
}

func TestLoadConfigFlagClamp(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	c, err := loadConfig(parseFlags(t, "--volume", "150", "--buffer-ms", "20", "--base-url", "https://cdn.example.com/"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.InitialVolume())
	assert.Equal(t, 20*time.Millisecond, c.BufferDuration)
	assert.Equal(t, "https://cdn.example.com/", c.BaseURL)
}
