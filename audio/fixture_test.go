package audio

import (
	"bytes"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/require"
)

// dcWAV encodes frames of a constant level as 16-bit stereo WAV
func dcWAV(t testing.TB, rate beep.SampleRate, frames int, level float64) []byte {
	t.Helper()
	s := beep.Take(frames, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	}))
	data, err := EncodeWAV(s, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	require.NoError(t, err)
	return data
}

// decodedLevel returns the first left sample of data as the wav decoder reads it
// Expected amplitudes come from here, not from the encoded level
func decodedLevel(t testing.TB, data []byte) float64 {
	t.Helper()
	s, _, err := wav.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	defer s.Close()

	samples := make([][2]float64, 1)
	n, _ := s.Stream(samples)
	require.Equal(t, 1, n)
	return samples[0][0]
}

// render pulls frames from a manual output
func render(out *ManualOutput, frames int) [][2]float64 {
	samples := make([][2]float64, frames)
	out.Stream(samples)
	return samples
}
