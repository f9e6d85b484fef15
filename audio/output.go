package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output is the audio graph destination streamers are played into
// Play locks internally; Lock/Unlock guard mutation of already playing streamers
type Output interface {
	SampleRate() beep.SampleRate
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Close() error
}

// --- ManualOutput: pull-mode destination ---

// ManualOutput renders only when Stream is called
// Used headless and as the render core of WriterOutput
type ManualOutput struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  beep.Mixer
	closed bool
}

// NewManualOutput creates a pull-mode output at rate
func NewManualOutput(rate beep.SampleRate) *ManualOutput {
	return &ManualOutput{rate: rate}
}

func (o *ManualOutput) SampleRate() beep.SampleRate { return o.rate }

func (o *ManualOutput) Play(s ...beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.mixer.Add(s...)
}

func (o *ManualOutput) Lock()   { o.mu.Lock() }
func (o *ManualOutput) Unlock() { o.mu.Unlock() }

// Stream renders the next len(samples) frames; silence when idle
func (o *ManualOutput) Stream(samples [][2]float64) (n int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	clear(samples)
	if o.closed {
		return len(samples), true
	}
	o.mixer.Stream(samples)
	return len(samples), true
}

// Err implements beep.Streamer
func (o *ManualOutput) Err() error { return nil }

// Len returns the number of streamers attached to the destination
func (o *ManualOutput) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mixer.Len()
}

// Close detaches everything; later Play calls are ignored
func (o *ManualOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.mixer.Clear()
	return nil
}

// --- SpeakerOutput: beep speaker device ---

// SpeakerOutput plays through the beep speaker (oto)
// The speaker is process-wide; open it once and share it between players
type SpeakerOutput struct {
	rate   beep.SampleRate
	closed atomic.Bool
}

// OpenSpeaker initializes the speaker at rate with a device buffer of bufferDuration
func OpenSpeaker(rate beep.SampleRate, bufferDuration time.Duration) (*SpeakerOutput, error) {
	if err := speaker.Init(rate, rate.N(bufferDuration)); err != nil {
		return nil, err
	}
	return &SpeakerOutput{rate: rate}, nil
}

func (o *SpeakerOutput) SampleRate() beep.SampleRate { return o.rate }

func (o *SpeakerOutput) Play(s ...beep.Streamer) {
	if o.closed.Load() {
		return
	}
	speaker.Play(s...)
}

func (o *SpeakerOutput) Lock()   { speaker.Lock() }
func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

func (o *SpeakerOutput) Close() error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	return nil
}

// OpenOutput opens the output selected by cfg.Backend
// auto tries speaker, then pipe, then falls back to a silent writer
func OpenOutput(cfg *Config) (Output, error) {
	cfg = cfg.normalized()
	rate := beep.SampleRate(cfg.SampleRate)

	switch cfg.Backend {
	case OutputSpeaker:
		return OpenSpeaker(rate, cfg.BufferDuration)
	case OutputPipe:
		return OpenPipe(rate, cfg.BufferDuration)
	case OutputNone:
		return newSilentOutput(rate, cfg.BufferDuration), nil
	case OutputAuto:
		out, speakerErr := OpenSpeaker(rate, cfg.BufferDuration)
		if speakerErr == nil {
			return out, nil
		}
		pipe, pipeErr := OpenPipe(rate, cfg.BufferDuration)
		if pipeErr == nil {
			return pipe, nil
		}
		return newSilentOutput(rate, cfg.BufferDuration), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// newSilentOutput renders in real time into io.Discard so sources still finish
func newSilentOutput(rate beep.SampleRate, tick time.Duration) *WriterOutput {
	w := NewWriterOutput(io.Discard, rate, tick)
	w.Start()
	return w
}

// IsSilent reports whether out discards everything it renders
func IsSilent(out Output) bool {
	w, ok := out.(*WriterOutput)
	return ok && w.output == io.Discard
}

// closeOutputs closes each output and joins errors
func closeOutputs(outs ...Output) error {
	var errs []error
	for _, out := range outs {
		if out == nil {
			continue
		}
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
