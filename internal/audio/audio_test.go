package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestSquareWave_Silent(t *testing.T) {
	w := newSquareWave(8, 1)
	p := make([]byte, 32)
	for i := range p {
		p[i] = 0xFF
	}

	assert.Equal(t, 32, w.fill(p, false))
	for _, s := range samples(p) {
		assert.Equal(t, float32(0), s)
	}
	assert.Equal(t, float64(0), w.phase)
}

func TestSquareWave_Tone(t *testing.T) {
	w := newSquareWave(8, 1) // 8 samples per cycle
	p := make([]byte, 16*4)

	assert.Equal(t, len(p), w.fill(p, true))

	got := samples(p)
	for i, s := range got {
		want := float32(amplitude)
		if i%8 >= 4 {
			want = -amplitude
		}
		assert.Equal(t, want, s)
	}
}

func TestSquareWave_PartialSample(t *testing.T) {
	w := newSquareWave(8, 1)
	p := make([]byte, 10)
	assert.Equal(t, 8, w.fill(p, true))
}

func TestSilent(t *testing.T) {
	var s Sink = Silent{}
	s.SetTone(true)
	assert.NoError(t, s.Close())
}
