package audio

import (
	"sync"
	"sync/atomic"
)

// Source is a one-shot playback node bound to a Buffer
// Created per Play call, streams the buffer once, never reused
type Source struct {
	id     uint64
	name   string
	buffer *Buffer
	reader interface {
		Stream(samples [][2]float64) (int, bool)
	}

	stopped  atomic.Bool
	finished atomic.Bool
	done     chan struct{}
	once     sync.Once
}

func newSource(id uint64, name string, buf *Buffer) *Source {
	return &Source{
		id:     id,
		name:   name,
		buffer: buf,
		reader: buf.streamer(),
		done:   make(chan struct{}),
	}
}

// ID returns the per-player sequence number of this source
func (s *Source) ID() uint64 { return s.id }

// Name returns the registered sound name
func (s *Source) Name() string { return s.name }

// Buffer returns the buffer being played
func (s *Source) Buffer() *Buffer { return s.buffer }

// Done is closed once playback has finished, been stopped, or the player closed
func (s *Source) Done() <-chan struct{} { return s.done }

// Stop ends playback at the next mix cycle
func (s *Source) Stop() {
	s.stopped.Store(true)
}

// Stream implements beep.Streamer; called from the output goroutine
func (s *Source) Stream(samples [][2]float64) (n int, ok bool) {
	if s.stopped.Load() {
		s.finish()
		return 0, false
	}

	n, ok = s.reader.Stream(samples)
	if !ok || n < len(samples) {
		s.finish()
	}
	return n, ok
}

// Err implements beep.Streamer
func (s *Source) Err() error { return nil }

func (s *Source) finish() {
	s.once.Do(func() {
		s.finished.Store(true)
		close(s.done)
	})
}
