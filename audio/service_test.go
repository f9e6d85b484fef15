package audio

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sfx/service"
)

func TestAudioServiceLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = OutputNone

	svc := NewService()
	assert.Equal(t, "audio", svc.Name())
	assert.Empty(t, svc.Dependencies())
	assert.Nil(t, svc.Player())

	var logs bytes.Buffer
	require.NoError(t, svc.Init(cfg, log.New(&logs, "", 0)))
	require.NoError(t, svc.Start())

	player := svc.Player()
	require.NotNil(t, player)
	assert.True(t, svc.IsDisabled())

	var published []any
	svc.Contribute(func(r any) { published = append(published, r) })
	assert.Equal(t, []any{player}, published)

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
	assert.True(t, player.IsClosed())
	assert.Nil(t, svc.Player())
}

func TestAudioServiceUnknownBackendFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "jack"

	var logs bytes.Buffer
	svc := NewService()
	require.NoError(t, svc.Init(cfg, log.New(&logs, "", 0)))
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NotNil(t, svc.Player())
	assert.True(t, svc.IsDisabled())
	assert.Contains(t, logs.String(), "running silent")
}

func TestAudioServiceInHub(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = OutputNone

	hub := service.NewHub()
	require.NoError(t, hub.Register(NewService(), cfg))
	require.NoError(t, hub.InitAll())
	require.NoError(t, hub.StartAll())
	defer hub.StopAll()

	resources := hub.Resources()
	require.Len(t, resources, 1)
	_, ok := resources[0].(*AudioPlayer)
	assert.True(t, ok)

	svc := service.MustGet[*AudioService](hub, ServiceName)
	assert.Same(t, svc.Player(), resources[0])
}
