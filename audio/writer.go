package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// bytesPerFrame is interleaved stereo s16le
const bytesPerFrame = 4

// WriterOutput renders a ManualOutput on a ticker and writes raw PCM to an io.Writer
type WriterOutput struct {
	*ManualOutput

	output io.Writer
	tick   time.Duration

	stopChan chan struct{}
	stopped  atomic.Bool
	started  atomic.Bool
	wg       sync.WaitGroup

	// Stats
	statsMu sync.Mutex
	frames  uint64

	errChan chan error
}

// NewWriterOutput creates an output writing s16le stereo frames to out every tick
func NewWriterOutput(out io.Writer, rate beep.SampleRate, tick time.Duration) *WriterOutput {
	if tick <= 0 {
		tick = DefaultConfig().BufferDuration
	}
	return &WriterOutput{
		ManualOutput: NewManualOutput(rate),
		output:       out,
		tick:         tick,
		stopChan:     make(chan struct{}),
		errChan:      make(chan error, 1),
	}
}

// Start begins the render loop
func (w *WriterOutput) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.wg.Add(1)
	go w.loop()
}

// Errors returns the channel receiving the first write error
func (w *WriterOutput) Errors() <-chan error {
	return w.errChan
}

// Frames returns the number of frames written so far
func (w *WriterOutput) Frames() uint64 {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.frames
}

// Close stops the loop and detaches all streamers
func (w *WriterOutput) Close() error {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.stopChan)
	}
	w.wg.Wait()
	return w.ManualOutput.Close()
}

// loop is the render goroutine
func (w *WriterOutput) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	frames := w.rate.N(w.tick)
	if frames < 1 {
		frames = 1
	}
	mixBuf := make([][2]float64, frames)
	outBytes := make([]byte, frames*bytesPerFrame)

	for {
		select {
		case <-w.stopChan:
			return

		case <-ticker.C:
			w.Stream(mixBuf)
			floatToBytes(mixBuf, outBytes)

			if _, err := w.output.Write(outBytes); err != nil {
				select {
				case w.errChan <- fmt.Errorf("%w: %v", ErrPipeClosed, err):
				default:
				}
				return
			}

			w.statsMu.Lock()
			w.frames += uint64(frames)
			w.statsMu.Unlock()
		}
	}
}

// floatToBytes converts stereo float frames to interleaved int16 LE bytes
// Applies soft limiting before hard clip
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		idx := i * bytesPerFrame
		binary.LittleEndian.PutUint16(out[idx:], uint16(toInt16(frame[0])))   // L
		binary.LittleEndian.PutUint16(out[idx+2:], uint16(toInt16(frame[1]))) // R
	}
}

func toInt16(v float64) int16 {
	// Soft limiter (tanh-style)
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}

	// Hard clip
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}

	return int16(v * 32767)
}
