package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Container identifies the encoded format of fetched bytes
type Container int

const (
	ContainerUnknown Container = iota
	ContainerWAV
	ContainerMP3
)

func (c Container) String() string {
	switch c {
	case ContainerWAV:
		return "wav"
	case ContainerMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Decoder is the decode stage: encoded bytes to a Buffer at the output rate
type Decoder struct {
	rate    beep.SampleRate
	quality int
}

// NewDecoder creates a decoder targeting rate
func NewDecoder(rate beep.SampleRate, quality int) *Decoder {
	if quality < 1 || quality > 64 {
		quality = DefaultConfig().ResampleQuality
	}
	return &Decoder{rate: rate, quality: quality}
}

// SampleRate returns the target rate
func (d *Decoder) SampleRate() beep.SampleRate {
	return d.rate
}

// Decode converts data into a ready-to-play Buffer
// Container is sniffed from content; any declared content type is ignored
func (d *Decoder) Decode(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	kind := sniffContainer(data)

	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch kind {
	case ContainerWAV:
		stream, format, err = wav.Decode(bytes.NewReader(data))
	case ContainerMP3:
		stream, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: unrecognized audio data", ErrDecode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}
	defer stream.Close()

	if format.SampleRate <= 0 || format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid format %+v", ErrDecode, kind, format)
	}

	// beep's wav decoder scales 16-bit samples by 1/(1<<16-1), halving amplitude
	var src beep.Streamer = stream
	if format.SampleRate != d.rate {
		src = beep.Resample(d.quality, format.SampleRate, d.rate, stream)
	}

	buf := beep.NewBuffer(beep.Format{
		SampleRate:  d.rate,
		NumChannels: format.NumChannels,
		Precision:   format.Precision,
	})
	buf.Append(src)

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}

	return &Buffer{data: buf, kind: kind}, nil
}

// sniffContainer inspects magic bytes
func sniffContainer(data []byte) Container {
	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")) {
		return ContainerWAV
	}
	if len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")) {
		return ContainerMP3
	}
	// MPEG audio frame sync: 11 set bits
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return ContainerMP3
	}
	return ContainerUnknown
}
