package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// gainNode is the shared volume stage every source is routed through
// All methods except construction run with the output locked
type gainNode struct {
	mixer   *beep.Mixer
	volume  *effects.Volume
	level   float64
	sources []*Source
	closed  bool
}

func newGainNode(level float64) *gainNode {
	mixer := &beep.Mixer{}
	g := &gainNode{
		mixer: mixer,
		volume: &effects.Volume{
			Streamer: mixer,
			Base:     2,
		},
	}
	g.setLevel(level)
	return g
}

// setLevel maps linear gain onto the exponential effects.Volume
func (g *gainNode) setLevel(level float64) {
	g.level = level
	if level <= 0 {
		g.volume.Silent = true
		g.volume.Volume = 0
		return
	}
	g.volume.Silent = false
	g.volume.Volume = math.Log2(level)
}

func (g *gainNode) connect(s *Source) {
	g.sources = append(g.sources, s)
	g.mixer.Add(s)
}

// active returns the number of sources still playing
func (g *gainNode) active() int {
	n := 0
	for _, s := range g.sources {
		if !s.finished.Load() {
			n++
		}
	}
	return n
}

// Stream implements beep.Streamer
// Emits silence while idle so the output keeps it connected until close
func (g *gainNode) Stream(samples [][2]float64) (n int, ok bool) {
	if g.closed {
		return 0, false
	}

	clear(samples)
	g.volume.Stream(samples)
	g.prune()
	return len(samples), true
}

// Err implements beep.Streamer
func (g *gainNode) Err() error { return nil }

// prune drops finished sources
func (g *gainNode) prune() {
	remaining := g.sources[:0]
	for _, s := range g.sources {
		if !s.finished.Load() {
			remaining = append(remaining, s)
		}
	}
	clear(g.sources[len(remaining):])
	g.sources = remaining
}

// close disconnects the node; the output drops it on its next cycle
func (g *gainNode) close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, s := range g.sources {
		s.finish()
	}
	g.sources = nil
	g.mixer.Clear()
}
