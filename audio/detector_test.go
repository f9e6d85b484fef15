package audio

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePlayer(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexec /bin/cat >/dev/null\n"), 0755))
}

func TestDetectBackendPriority(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell players only")
	}

	dir := t.TempDir()
	t.Setenv("PATH", dir)

	fakePlayer(t, dir, "aplay")
	cfg, err := DetectBackend(22050)
	require.NoError(t, err)
	assert.Equal(t, BackendALSA, cfg.Type)
	assert.Contains(t, cfg.Args, "22050")

	fakePlayer(t, dir, "pacat")
	cfg, err = DetectBackend(48000)
	require.NoError(t, err)
	assert.Equal(t, BackendPulse, cfg.Type)
	assert.Contains(t, cfg.Args, "--rate=48000")
}

func TestDetectBackendNone(t *testing.T) {
	if runtime.GOOS == "freebsd" || runtime.GOOS == "windows" {
		t.Skip("OSS device or shell players")
	}

	t.Setenv("PATH", t.TempDir())
	_, err := DetectBackend(44100)
	assert.ErrorIs(t, err, ErrNoAudioBackend)
}

func TestPipeOutputStreamsToProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell players only")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	dir := t.TempDir()
	t.Setenv("PATH", dir)
	fakePlayer(t, dir, "aplay")

	pipe, err := OpenPipe(8000, 0)
	require.NoError(t, err)
	assert.Equal(t, "aplay", pipe.Backend().Name)
	assert.False(t, pipe.Exited())

	require.NoError(t, pipe.Close())
	require.NoError(t, pipe.Close())
	assert.True(t, pipe.Exited())
}
