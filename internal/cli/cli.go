// Package cli handles command line interface logic.
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/koushik255/chip8go/internal/config"
)

// ParseFlags parses the command line arguments (without the program name)
// into run options.
func ParseFlags(args []string) (config.Options, error) {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	opts := config.Default()
	flags.Float64Var(&opts.Scale, "scale", opts.Scale, "window scale factor")
	flags.IntVar(&opts.CyclesPerFrame, "cycles", opts.CyclesPerFrame, "instructions executed per 60 Hz frame")
	flags.Float64Var(&opts.ToneFrequency, "tone", opts.ToneFrequency, "beeper frequency in Hz")
	flags.BoolVar(&opts.Terminal, "term", false, "run in the terminal instead of a window")
	flags.BoolVar(&opts.Debug, "debug", false, "enable the terminal debugger (implies -term)")
	flags.BoolVar(&opts.Watch, "watch", false, "reload the ROM when the file changes")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound")
	flags.BoolVar(&opts.Quiet, "q", false, "quiet, only output errors")
	flags.BoolVar(&opts.Verbose, "v", false, "verbose output, starts with the instruction trace on")
	flags.BoolVar(&opts.ShiftUsesVY, "shift-vy", opts.ShiftUsesVY, "8XY6/8XYE shift VY into VX instead of shifting VX")
	flags.BoolVar(&opts.SkipNotEqualLowByte, "sne-lowbyte", opts.SkipNotEqualLowByte, "9XY0 compares VX against the register indexed by the low byte")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if flags.NArg() != 1 {
		return opts, &UsageError{flags: flags, msg: "expected exactly one ROM file"}
	}
	opts.ROM = flags.Arg(0)
	if opts.Debug {
		opts.Terminal = true
	}

	if err := opts.Validate(); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	return opts, nil
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage text and the flag defaults to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8 [options] <ROM file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}
