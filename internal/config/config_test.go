package config

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/koushik255/chip8go/chip8"
)

func TestDefault(t *testing.T) {
	opts := Default()

	assert.Equal(t, float64(DefaultScale), opts.Scale)
	assert.Equal(t, DefaultCyclesPerFrame, opts.CyclesPerFrame)
	assert.Equal(t, chip8.DefaultQuirks(), opts.Quirks())
}

func TestOptions_Quirks(t *testing.T) {
	opts := Options{SkipNotEqualLowByte: true}
	assert.Equal(t, chip8.Quirks{SkipNotEqualLowByte: true}, opts.Quirks())
}

func TestOptions_Validate(t *testing.T) {
	valid := Default()
	valid.ROM = "pong.ch8"

	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "valid", modify: func(*Options) {}},
		{name: "missing rom", modify: func(o *Options) { o.ROM = "" }, wantErr: true},
		{name: "zero scale", modify: func(o *Options) { o.Scale = 0 }, wantErr: true},
		{name: "zero cycles", modify: func(o *Options) { o.CyclesPerFrame = 0 }, wantErr: true},
		{name: "negative tone", modify: func(o *Options) { o.ToneFrequency = -1 }, wantErr: true},
		{name: "quiet and verbose", modify: func(o *Options) { o.Quiet, o.Verbose = true, true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.modify(&opts)

			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}

func TestCreateLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := CreateLoggerTo(&buf, false, true)
	logger.Info("hidden")
	assert.Equal(t, 0, buf.Len())
	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	CreateLoggerTo(&buf, true, false).Debug("traced")
	assert.Contains(t, buf.String(), "traced")
}
