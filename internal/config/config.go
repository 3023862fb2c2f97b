// Package config holds the run options and the logger setup.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"

	"github.com/koushik255/chip8go/chip8"
)

const (
	// DefaultScale is the window size multiplier for the 64x32 display.
	DefaultScale = 10

	// DefaultCyclesPerFrame is the number of cycles run per 60 Hz frame.
	DefaultCyclesPerFrame = 10

	// DefaultToneFrequency is the beeper pitch in Hz.
	DefaultToneFrequency = 440
)

// Options contains the options that control the emulator run.
type Options struct {
	ROM string

	Scale          float64
	CyclesPerFrame int
	ToneFrequency  float64

	Terminal bool // terminal frontend instead of a window
	Debug    bool // debugger panes, implies Terminal
	Watch    bool // reload the ROM when the file changes
	Mute     bool

	Quiet   bool
	Verbose bool // debug logging, instruction trace on at start

	ShiftUsesVY         bool
	SkipNotEqualLowByte bool
}

// Default returns the options used when no flags are given.
func Default() Options {
	q := chip8.DefaultQuirks()
	return Options{
		Scale:               DefaultScale,
		CyclesPerFrame:      DefaultCyclesPerFrame,
		ToneFrequency:       DefaultToneFrequency,
		ShiftUsesVY:         q.ShiftUsesVY,
		SkipNotEqualLowByte: q.SkipNotEqualLowByte,
	}
}

// Quirks returns the instruction interpretation selected by the options.
func (o Options) Quirks() chip8.Quirks {
	return chip8.Quirks{
		ShiftUsesVY:         o.ShiftUsesVY,
		SkipNotEqualLowByte: o.SkipNotEqualLowByte,
	}
}

// Validate checks the options for values the emulator cannot run with.
func (o Options) Validate() error {
	if o.ROM == "" {
		return errors.New("no ROM file given")
	}
	if o.Scale <= 0 {
		return fmt.Errorf("invalid scale %v", o.Scale)
	}
	if o.CyclesPerFrame <= 0 {
		return fmt.Errorf("invalid cycles per frame %d", o.CyclesPerFrame)
	}
	if o.ToneFrequency <= 0 {
		return fmt.Errorf("invalid tone frequency %v", o.ToneFrequency)
	}
	if o.Quiet && o.Verbose {
		return errors.New("quiet and verbose are mutually exclusive")
	}
	return nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	return CreateLoggerTo(nil, debug, quiet)
}

// CreateLoggerTo is CreateLogger writing to w. A nil w writes to stdout.
func CreateLoggerTo(w io.Writer, debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = w
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
