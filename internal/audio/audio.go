// Package audio produces the tone signalled by the CHIP-8 sound timer.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

// DefaultSampleRate is the output sample rate used by NewBeeper.
const DefaultSampleRate = 44100

const amplitude = 0.2

// Sink is told when the machine wants a tone.
type Sink interface {
	SetTone(on bool)
	Close() error
}

// Silent discards all tone requests.
type Silent struct{}

// SetTone implements Sink.
func (Silent) SetTone(bool) {}

// Close implements Sink.
func (Silent) Close() error { return nil }

// squareWave generates a mono float32 square wave.
type squareWave struct {
	period float64 // samples per cycle
	phase  float64
}

func newSquareWave(sampleRate int, freq float64) *squareWave {
	return &squareWave{period: float64(sampleRate) / freq}
}

// fill writes little endian float32 samples into p, silence when on is
// false, and returns the number of bytes written. The phase only advances
// while the tone is on so every beep starts on a rising edge.
func (w *squareWave) fill(p []byte, on bool) int {
	n := len(p) / 4
	for i := 0; i < n; i++ {
		var s float32
		if on {
			if w.phase < w.period/2 {
				s = amplitude
			} else {
				s = -amplitude
			}
			w.phase++
			if w.phase >= w.period {
				w.phase -= w.period
			}
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4
}

// Beeper plays a square wave through oto while the tone is on.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	wave   *squareWave
	on     atomic.Bool
	mutex  sync.Mutex // Only for setup/control operations
}

// NewBeeper opens the audio device and starts a silent stream at freq Hz.
func NewBeeper(sampleRate int, freq float64) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrap(err, "opening audio device")
	}
	<-ready

	b := &Beeper{
		ctx:  ctx,
		wave: newSquareWave(sampleRate, freq),
	}
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return b, nil
}

// Read implements io.Reader for the oto player.
func (b *Beeper) Read(p []byte) (int, error) {
	return b.wave.fill(p, b.on.Load()), nil
}

// SetTone implements Sink.
func (b *Beeper) SetTone(on bool) {
	b.on.Store(on)
}

// Close stops playback.
func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return errors.Wrap(err, "closing audio player")
}
