package audio

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/sfx/core"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Preset timing
const (
	bounceDuration  = 60 * time.Millisecond
	chargeDuration  = 140 * time.Millisecond
	impulseDuration = 180 * time.Millisecond
	exhaustDuration = 260 * time.Millisecond
	breakDuration   = 90 * time.Millisecond
	winNoteDuration = 150 * time.Millisecond

	presetAttack  = 4 * time.Millisecond
	presetRelease = 40 * time.Millisecond
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a finite oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + int64(duration))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.position >= o.duration {
		return 0, false
	}

	for i := range samples {
		if o.position >= o.duration {
			return i, true
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/release envelope over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.totalSamples {
		return 0, false
	}
	if remaining := e.totalSamples - e.position; len(samples) > remaining {
		samples = samples[:remaining]
	}

	n, ok = e.streamer.Stream(samples)
	releaseStart := e.attackSamples + e.sustainSamples

	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a linear gain; 0 or below is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

func tone(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, presetAttack, presetRelease, rate)
}

// Preset synthesizes a placeholder for a game sound
// Returns nil for unknown ids
func Preset(id core.SoundID, rate beep.SampleRate) beep.Streamer {
	switch id {
	case core.SoundBounce:
		return newVolume(tone(660, bounceDuration, WaveSquare, rate), 0.4)

	case core.SoundBounceCharge:
		return newVolume(beep.Mix(
			tone(660, chargeDuration, WaveSquare, rate),
			newVolume(tone(1320, chargeDuration, WaveSine, rate), 0.5),
		), 0.4)

	case core.SoundImpulse:
		return newVolume(beep.Mix(
			tone(0, impulseDuration, WaveNoise, rate),
			tone(110, impulseDuration, WaveSaw, rate),
		), 0.3)

	case core.SoundImpulseExhaust:
		return newVolume(tone(0, exhaustDuration, WaveNoise, rate), 0.25)

	case core.SoundBreak1, core.SoundBreak2, core.SoundBreak3, core.SoundBreak4:
		// Each variant pitches the crunch a step higher
		step := float64(id - core.SoundBreak1)
		return newVolume(beep.Mix(
			tone(0, breakDuration, WaveNoise, rate),
			tone(220*math.Pow(2, step/4), breakDuration, WaveSaw, rate),
		), 0.35)

	case core.SoundWin:
		return newVolume(beep.Seq(
			tone(987.77, winNoteDuration, WaveSquare, rate),
			tone(1318.51, 2*winNoteDuration, WaveSquare, rate),
		), 0.4)

	default:
		return nil
	}
}

// EncodeWAV renders s to a 16-bit WAV file in memory
// s must be finite
func EncodeWAV(s beep.Streamer, format beep.Format) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil streamer")
	}
	var buf seekBuffer
	if err := wav.Encode(&buf, s, format); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// PresetWAV renders the preset for id as WAV bytes
func PresetWAV(id core.SoundID, rate beep.SampleRate) ([]byte, error) {
	s := Preset(id, rate)
	if s == nil {
		return nil, errors.New("unknown sound: " + id.String())
	}
	return EncodeWAV(s, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
}

// seekBuffer is an in-memory io.WriteSeeker; wav.Encode patches the header after writing
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
