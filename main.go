// Package main implements the CHIP-8 emulator command.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/koushik255/chip8go/chip8"
	"github.com/koushik255/chip8go/internal/audio"
	"github.com/koushik255/chip8go/internal/cli"
	"github.com/koushik255/chip8go/internal/config"
	"github.com/koushik255/chip8go/internal/gui"
	"github.com/koushik255/chip8go/internal/rom"
	"github.com/koushik255/chip8go/internal/runner"
	"github.com/koushik255/chip8go/internal/term"
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(false, false)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			logger.Error(usageErr.Error())
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		logger.Fatal(err.Error())
	}

	// The terminal frontend owns the screen, keep log output to errors.
	// The debugger replaces this logger with one writing to its log pane.
	logger := config.CreateLogger(opts.Verbose, opts.Quiet || opts.Terminal)

	if opts.Terminal {
		err = runTerminal(ctx, logger, opts)
	} else {
		gui.Run(func() {
			err = runWindow(ctx, logger, opts)
		})
	}
	if err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

// setup loads the ROM and creates the machine and the audio sink.
func setup(logger *log.Logger, opts config.Options) (*chip8.Chip8, []byte, audio.Sink, error) {
	image, err := rom.Read(opts.ROM)
	if err != nil {
		return nil, nil, nil, err
	}

	vm := chip8.New(
		chip8.WithQuirks(opts.Quirks()),
		chip8.WithLogger(logger),
	)
	vm.SetTrace(opts.Verbose)

	var sink audio.Sink = audio.Silent{}
	if !opts.Mute {
		beeper, err := audio.NewBeeper(audio.DefaultSampleRate, opts.ToneFrequency)
		if err != nil {
			logger.Warn("Audio disabled", log.Err(err))
		} else {
			sink = beeper
		}
	}

	logger.Info("Loaded ROM", log.String("file", opts.ROM), log.Int("size", len(image)))
	return vm, image, sink, nil
}

// start loads the image into the runner and starts the ROM watcher when
// requested.
func start(ctx context.Context, logger *log.Logger, opts config.Options, r *runner.Runner, image []byte) error {
	if err := r.Swap(image); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	w := rom.NewWatcher(logger, opts.ROM)
	go func() {
		err := w.Run(ctx, func(data []byte) {
			if err := r.Swap(data); err != nil {
				logger.Error("Swapping ROM failed", log.Err(err))
			}
		})
		if err != nil {
			logger.Error("Watching ROM failed", log.Err(err))
		}
	}()
	return nil
}

func runWindow(ctx context.Context, logger *log.Logger, opts config.Options) error {
	vm, image, sink, err := setup(logger, opts)
	if err != nil {
		return err
	}
	defer sink.Close()

	win, err := gui.New(opts.Scale)
	if err != nil {
		return err
	}

	r := runner.New(vm, win, sink, logger, runner.Options{
		CyclesPerFrame: opts.CyclesPerFrame,
	})
	win.Attach(r, logger)
	if err := start(ctx, logger, opts, r, image); err != nil {
		return err
	}
	return r.Run(ctx)
}

func runTerminal(ctx context.Context, logger *log.Logger, opts config.Options) error {
	t := term.New(opts.Debug)
	if opts.Debug {
		logger = config.CreateLoggerTo(t.LogWriter(), opts.Verbose, opts.Quiet)
	}

	vm, image, sink, err := setup(logger, opts)
	if err != nil {
		return err
	}
	defer sink.Close()
	runOpts := runner.Options{
		CyclesPerFrame: opts.CyclesPerFrame,
		PauseOnHalt:    opts.Debug,
	}
	if opts.Debug {
		runOpts.StateFunc = t.StateFunc
	}
	r := runner.New(vm, t, sink, logger, runOpts)
	t.Attach(r)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := start(ctx, logger, opts, r, image); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		err := r.Run(ctx)
		t.Stop()
		done <- err
	}()

	if err := t.Run(); err != nil {
		return err
	}
	cancel()
	return <-done
}
