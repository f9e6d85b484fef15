package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sfx/audio"
)

type fakePlayer struct {
	played []string
	volume float64
}

func (f *fakePlayer) PlaySound(name string) { f.played = append(f.played, name) }
func (f *fakePlayer) SetVolume(v float64)   { f.volume = min(max(v, 0), 1) }
func (f *fakePlayer) Volume() float64       { return f.volume }
func (f *fakePlayer) Stats() audio.Stats    { return audio.Stats{Played: uint64(len(f.played))} }

func newTestBoard(t *testing.T, names []string) (*board, *fakePlayer, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	player := &fakePlayer{volume: 1}
	return newBoard(screen, player, names, nil), player, screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// row reads screen line y as text
func row(screen tcell.SimulationScreen, y int) string {
	width, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestBoardPlaysSlots(t *testing.T) {
	b, player, _ := newTestBoard(t, []string{"bounce", "impulse", "win"})

	assert.True(t, b.handleEvent(key('1')))
	assert.True(t, b.handleEvent(key('3')))
	assert.True(t, b.handleEvent(key('4'))) // Unbound slot
	assert.Equal(t, []string{"bounce", "win"}, player.played)
	assert.Equal(t, 2, b.lastKey)
}

func TestBoardVolume(t *testing.T) {
	b, player, _ := newTestBoard(t, nil)

	b.handleEvent(key('-'))
	b.handleEvent(key('-'))
	assert.InDelta(t, 0.8, player.volume, 1e-9)

	for i := 0; i < 5; i++ {
		b.handleEvent(key('+'))
	}
	assert.Equal(t, 1.0, player.volume)
}

func TestBoardQuit(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)

	assert.False(t, b.handleEvent(key('q')))
	assert.False(t, b.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, b.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestBoardReloadEvent(t *testing.T) {
	b, player, _ := newTestBoard(t, []string{"a"})

	b.handleEvent(&reloadEvent{when: time.Now(), names: []string{"x", "y"}})
	assert.Equal(t, []string{"x", "y"}, b.names)
	assert.Equal(t, "loaded 2 sounds", b.status)
	assert.False(t, b.failed)

	b.handleEvent(key('2'))
	assert.Equal(t, []string{"y"}, player.played)

	b.handleEvent(&reloadEvent{when: time.Now(), names: []string{"x", "y"}, err: errors.New("bad yaml")})
	assert.True(t, b.failed)
	assert.Equal(t, "bad yaml", b.status)
}

func TestBoardReloadKey(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)
	called := make(chan struct{})
	b.reload = func() error {
		close(called)
		return nil
	}

	b.handleEvent(key('r'))
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected reload")
	}
	assert.Equal(t, "reloading...", b.status)
}

func TestBoardKeysSkipCommands(t *testing.T) {
	assert.NotContains(t, string(boardKeys), "q")
	assert.NotContains(t, string(boardKeys), "r")

	names := make([]string, len(boardKeys)+5)
	for i := range names {
		names[i] = string(rune('A' + i%26))
	}
	b, _, _ := newTestBoard(t, names)
	assert.Len(t, b.names, len(boardKeys))
}

func TestBoardDraw(t *testing.T) {
	b, _, screen := newTestBoard(t, []string{"bounce", "win"})
	b.silent = true
	b.status = "loaded 2 sounds"
	b.draw()

	assert.Contains(t, row(screen, 0), "sfx board")
	assert.Contains(t, row(screen, 0), "silent")
	assert.Equal(t, " [1] bounce", row(screen, 2))
	assert.Equal(t, " [2] win", row(screen, 3))
	assert.Contains(t, row(screen, 22), "vol 100%")
	assert.Equal(t, " loaded 2 sounds", row(screen, 23))
}

func TestBoardDrawEmpty(t *testing.T) {
	b, _, screen := newTestBoard(t, nil)
	b.draw()
	assert.Contains(t, row(screen, 2), "no sounds registered")
}

func TestPollEventsStopsWhenDone(t *testing.T) {
	_, _, screen := newTestBoard(t, nil)
	for _, r := range "abc" {
		require.NoError(t, screen.PostEvent(key(r)))
	}

	events := make(chan tcell.Event, 1)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		pollEvents(screen, events, done)
		close(finished)
	}()

	// Buffer full, forwarder parked on the next send
	require.Eventually(t, func() bool { return len(events) == 1 }, time.Second, 5*time.Millisecond)
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pollEvents blocked on a full buffer after done")
	}
}

func TestPollEventsStopsOnFini(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	finished := make(chan struct{})
	go func() {
		pollEvents(screen, make(chan tcell.Event, 1), make(chan struct{}))
		close(finished)
	}()
	screen.Fini()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pollEvents did not return after Fini")
	}
}
