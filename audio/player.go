// Package audio loads named sound effects over the network and plays them
// on demand through a shared gain stage.
package audio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// AudioPlayer owns a set of named decoded buffers and one gain node wired to an output
type AudioPlayer struct {
	out      Output
	ownsOut  bool
	gain     *gainNode
	fetcher  *Fetcher
	decoder  *Decoder
	fetchErr error // Deferred invalid-config error, surfaced by LoadAudio

	mu      sync.RWMutex // Protects buffers
	buffers map[string]*Buffer

	closed atomic.Bool
	nextID atomic.Uint64
	played atomic.Uint64
	missed atomic.Uint64
}

// Stats is a snapshot of player counters
type Stats struct {
	Played     uint64 // Sources started
	Missed     uint64 // Play requests for unregistered names
	Active     int    // Sources still playing
	Registered int    // Stored buffers
}

// NewAudioPlayer creates a player on out and connects its gain node once
// out stays owned by the caller
func NewAudioPlayer(out Output, cfg ...*Config) *AudioPlayer {
	var c *Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	c = c.normalized()

	p := &AudioPlayer{
		out:     out,
		gain:    newGainNode(c.InitialVolume()),
		decoder: NewDecoder(out.SampleRate(), c.ResampleQuality),
		buffers: make(map[string]*Buffer),
	}

	fetcher, err := NewFetcher(c)
	if err != nil {
		p.fetchErr = fmt.Errorf("%w: %v", ErrFetch, err)
		c.BaseURL = ""
		fetcher, _ = NewFetcher(c)
	}
	p.fetcher = fetcher

	out.Play(p.gain)
	return p
}

// OpenAudioPlayer opens the output selected by cfg and returns a player owning it
func OpenAudioPlayer(cfg *Config) (*AudioPlayer, error) {
	cfg = cfg.normalized()
	out, err := OpenOutput(cfg)
	if err != nil {
		return nil, err
	}
	p := NewAudioPlayer(out, cfg)
	p.ownsOut = true
	return p, nil
}

// Output returns the output the player is connected to
func (p *AudioPlayer) Output() Output {
	return p.out
}

// LoadAudio fetches and decodes the resource at url without storing it
func (p *AudioPlayer) LoadAudio(ctx context.Context, url string) (*Buffer, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}

	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	buf, err := p.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	buf.origin = url
	return buf, nil
}

// AddAudio loads url and stores the result under name, replacing any prior entry
// On failure the prior entry, if any, is left untouched
func (p *AudioPlayer) AddAudio(ctx context.Context, name, url string) error {
	buf, err := p.LoadAudio(ctx, url)
	if err != nil {
		return err
	}
	return p.store(name, buf)
}

// AddAudioData decodes already-held bytes (embedded assets) and stores them under name
func (p *AudioPlayer) AddAudioData(name string, data []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	buf, err := p.decoder.Decode(data)
	if err != nil {
		return err
	}
	return p.store(name, buf)
}

func (p *AudioPlayer) store(name string, buf *Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-checked under lock so nothing is stored after Close cleared the map
	if p.closed.Load() {
		return ErrClosed
	}
	p.buffers[name] = buf
	return nil
}

// RemoveAudio drops the buffer stored under name and reports whether it existed
// Sources already playing it run to completion
func (p *AudioPlayer) RemoveAudio(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.buffers[name]
	delete(p.buffers, name)
	return ok
}

// Buffer returns the buffer stored under name
func (p *AudioPlayer) Buffer(name string) (*Buffer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	buf, ok := p.buffers[name]
	return buf, ok
}

// Names returns registered names in sorted order
func (p *AudioPlayer) Names() []string {
	p.mu.RLock()
	names := make([]string, 0, len(p.buffers))
	for name := range p.buffers {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)
	return names
}

// PlaySound starts the sound registered under name
// Unregistered names are silently ignored
func (p *AudioPlayer) PlaySound(name string) {
	p.Play(name)
}

// Play starts a new one-shot source for name and returns it
// Returns nil, without error, when name is unregistered or the player is closed
func (p *AudioPlayer) Play(name string) *Source {
	if p.closed.Load() {
		return nil
	}

	buf, ok := p.Buffer(name)
	if !ok {
		p.missed.Add(1)
		return nil
	}

	src := newSource(p.nextID.Add(1), name, buf)

	p.out.Lock()
	if p.gain.closed {
		p.out.Unlock()
		return nil
	}
	p.gain.connect(src)
	p.out.Unlock()

	p.played.Add(1)
	return src
}

// SetVolume sets the shared gain (0.0-1.0, clamped); 0 is silent
func (p *AudioPlayer) SetVolume(vol float64) {
	vol = clampVolume(vol)

	p.out.Lock()
	p.gain.setLevel(vol)
	p.out.Unlock()
}

// Volume returns the shared gain
func (p *AudioPlayer) Volume() float64 {
	p.out.Lock()
	defer p.out.Unlock()
	return p.gain.level
}

// Decibels returns the shared gain in dBFS
func (p *AudioPlayer) Decibels() float64 {
	v := p.Volume()
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// Stats returns current counters
func (p *AudioPlayer) Stats() Stats {
	p.out.Lock()
	active := p.gain.active()
	p.out.Unlock()

	p.mu.RLock()
	registered := len(p.buffers)
	p.mu.RUnlock()

	return Stats{
		Played:     p.played.Load(),
		Missed:     p.missed.Load(),
		Active:     active,
		Registered: registered,
	}
}

// IsClosed reports whether Close has been called
func (p *AudioPlayer) IsClosed() bool {
	return p.closed.Load()
}

// Close disconnects the gain node, finishes every active source and drops
// all buffers; an output opened by OpenAudioPlayer is closed too
// Idempotent
func (p *AudioPlayer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.out.Lock()
	p.gain.close()
	p.out.Unlock()

	p.mu.Lock()
	clear(p.buffers)
	p.mu.Unlock()

	if p.ownsOut {
		return closeOutputs(p.out)
	}
	return nil
}
