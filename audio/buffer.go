package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Buffer is decoded PCM ready for playback at the output sample rate
// Immutable once built; shared read-only by every Source playing it
type Buffer struct {
	data   *beep.Buffer
	origin string
	kind   Container
}

// Format returns the sample format of the decoded data
func (b *Buffer) Format() beep.Format {
	return b.data.Format()
}

// Len returns the buffer length in frames
func (b *Buffer) Len() int {
	return b.data.Len()
}

// Duration returns the playback length
func (b *Buffer) Duration() time.Duration {
	return b.data.Format().SampleRate.D(b.data.Len())
}

// Origin returns the locator the buffer was loaded from, empty for raw data
func (b *Buffer) Origin() string {
	return b.origin
}

// Container returns the encoded format the buffer was decoded from
func (b *Buffer) Container() Container {
	return b.kind
}

// streamer returns a fresh one-shot reader over the whole buffer
func (b *Buffer) streamer() beep.StreamSeeker {
	return b.data.Streamer(0, b.data.Len())
}
