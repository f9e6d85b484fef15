package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sfx/audio"
	"github.com/lixenwraith/sfx/core"
	"github.com/lixenwraith/sfx/manifest"
)

func TestGenerateCatalogueLoadsBack(t *testing.T) {
	dir := t.TempDir()

	written, err := generateCatalogue(dir, 22050)
	require.NoError(t, err)
	assert.Len(t, written, int(core.SoundIDCount)+1)

	m, err := manifest.Load(filepath.Join(dir, manifestFileName))
	require.NoError(t, err)

	player := audio.NewAudioPlayer(audio.NewManualOutput(44100))
	defer player.Close()

	// Run from elsewhere: base_url is absolute
	chdirTemp(t)
	require.NoError(t, manifest.Register(context.Background(), player, m, 0))

	assert.Len(t, player.Names(), int(core.SoundIDCount))
	buf, ok := player.Buffer("bounce_charge")
	require.True(t, ok)
	assert.Positive(t, buf.Len())
}

func TestGenerateCatalogueInvalidRate(t *testing.T) {
	_, err := generateCatalogue(t.TempDir(), 0)
	assert.Error(t, err)
}
