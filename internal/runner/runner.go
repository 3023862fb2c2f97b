// Package runner drives a CHIP-8 machine at a fixed frame cadence and
// couples its status flags to a frontend and an audio sink.
package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/koushik255/chip8go/chip8"
	"github.com/koushik255/chip8go/internal/audio"
)

// FrameRate is the number of frames run per second, the rate the timers
// of the original hardware counted down at.
const FrameRate = 60

// codeWindow is the number of bytes from PC included in a snapshot.
const codeWindow = 16

// MaxCyclesPerFrame bounds the execution rate. At 60 frames a second it is
// far beyond what any CHIP-8 program expects.
const MaxCyclesPerFrame = 1000

var errNoImage = errors.New("no program loaded")

// KeyEvent is a transition of one pad key.
type KeyEvent struct {
	Key     uint8
	Pressed bool
}

// Frontend presents frames and supplies key input.
type Frontend interface {
	// Poll returns the pad key transitions since the previous call. It is
	// called once per frame before any cycle runs.
	Poll() []KeyEvent
	// Present shows a frame. It is only called when the frame changed.
	Present(frame chip8.Frame)
	// Closed reports whether the user closed the frontend.
	Closed() bool
}

// StateKind describes why a frame ended.
type StateKind int

const (
	RunState   StateKind = iota // all cycles of the frame ran
	WaitState                   // the machine waits for a key press
	PauseState                  // execution is paused
	BreakState                  // a breakpoint was reached
	HaltState                   // the machine faulted
)

func (k StateKind) String() string {
	switch k {
	case RunState:
		return "run"
	case WaitState:
		return "wait"
	case PauseState:
		return "pause"
	case BreakState:
		return "break"
	case HaltState:
		return "halt"
	default:
		return "unknown"
	}
}

// Snapshot is the machine state reported after each frame.
type Snapshot struct {
	Kind      StateKind
	Registers chip8.Registers
	Keypad    [chip8.KeyCount]bool
	Code      []byte // memory starting at PC
	Err       error  // fault that halted the machine
}

// Options configures a Runner.
type Options struct {
	CyclesPerFrame int

	// PauseOnHalt keeps the runner alive after a fault so a debugger can
	// inspect the machine. Otherwise Run returns the fault.
	PauseOnHalt bool

	// StateFunc is called after every frame with the machine state.
	StateFunc func(Snapshot)
}

// Runner executes a machine frame by frame. Its control methods may be
// called from other goroutines.
type Runner struct {
	frontend Frontend
	sink     audio.Sink
	logger   *log.Logger
	opts     Options

	mu        sync.Mutex
	vm        *chip8.Chip8
	cycles    int // per frame, starts at opts.CyclesPerFrame
	paused    bool
	steps     int
	skipBreak bool
	breaks    map[uint16]struct{}
	image     []byte
}

// New returns a runner for the machine.
func New(vm *chip8.Chip8, frontend Frontend, sink audio.Sink, logger *log.Logger, opts Options) *Runner {
	opts.CyclesPerFrame = clampCycles(opts.CyclesPerFrame)
	if sink == nil {
		sink = audio.Silent{}
	}
	return &Runner{
		vm:       vm,
		frontend: frontend,
		sink:     sink,
		logger:   logger,
		opts:     opts,
		cycles:   opts.CyclesPerFrame,
		breaks:   make(map[uint16]struct{}),
	}
}

// Run executes frames at FrameRate until ctx is done or the frontend is
// closed. It returns the machine fault unless PauseOnHalt is set.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()
	defer r.sink.SetTone(false)

	for !r.frontend.Closed() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := r.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Frame delivers pending key input, runs one frame worth of cycles and
// hands the results to the frontend and the audio sink.
func (r *Runner) Frame() error {
	events := r.frontend.Poll()

	r.mu.Lock()
	for _, ev := range events {
		if err := r.vm.KeyChange(ev.Key, ev.Pressed); err != nil {
			r.logger.Warn("Ignoring key event", log.Err(err))
		}
	}

	kind, err := r.runCycles()

	status := r.vm.Status()
	var frame chip8.Frame
	if status.Redraw {
		frame = r.vm.Framebuffer()
		r.vm.ClearRedraw()
	}
	if status.Sound {
		r.vm.ClearSound()
	}
	snap := r.snapshot(kind, err)
	r.mu.Unlock()

	if status.Redraw {
		r.frontend.Present(frame)
	}
	r.sink.SetTone(status.Sound)
	if r.opts.StateFunc != nil {
		r.opts.StateFunc(snap)
	}

	if err != nil && !r.opts.PauseOnHalt {
		return err
	}
	return nil
}

// runCycles runs up to r.cycles cycles. The caller holds r.mu.
func (r *Runner) runCycles() (StateKind, error) {
	for i := 0; i < r.cycles; i++ {
		if r.paused && r.steps == 0 {
			return PauseState, nil
		}
		if r.vm.State() == chip8.AwaitingKey {
			return WaitState, nil
		}
		if _, ok := r.breaks[r.vm.PC]; ok && !r.skipBreak {
			r.paused, r.steps = true, 0
			r.logger.Info("Breakpoint reached", log.Hex("pc", r.vm.PC))
			return BreakState, nil
		}
		r.skipBreak = false

		if err := r.vm.Cycle(); err != nil {
			r.paused, r.steps = true, 0
			return HaltState, err
		}
		if r.steps > 0 {
			r.steps--
		}
	}
	return RunState, nil
}

func (r *Runner) snapshot(kind StateKind, err error) Snapshot {
	snap := Snapshot{
		Kind:      kind,
		Registers: r.vm.Registers(),
		Keypad:    r.vm.Keypad(),
		Err:       err,
	}
	end := min(int(r.vm.PC)+codeWindow, chip8.MemorySize)
	if code, err := r.vm.MemoryRange(int(r.vm.PC), end); err == nil {
		snap.Code = code
	}
	return snap
}

// Pause stops execution at the next cycle boundary.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused, r.steps = true, 0
}

// Resume continues execution, stepping over a breakpoint at PC.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused, r.steps = false, 0
	r.skipBreak = true
}

// Step executes n cycles and pauses again.
func (r *Runner) Step(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	r.steps = n
	r.skipBreak = true
}

// TogglePause pauses a running machine or resumes a paused one and
// returns whether execution is paused afterwards.
func (r *Runner) TogglePause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		r.paused, r.steps = false, 0
		r.skipBreak = true
	} else {
		r.paused, r.steps = true, 0
	}
	return r.paused
}

// Paused reports whether execution is paused.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// CyclesPerFrame returns the number of cycles run per frame.
func (r *Runner) CyclesPerFrame() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}

// SetCyclesPerFrame changes the execution rate from the next frame on.
// n is clamped to 1..MaxCyclesPerFrame; the rate in effect is returned.
func (r *Runner) SetCyclesPerFrame(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setCycles(n)
}

// AdjustCyclesPerFrame adds delta to the execution rate and returns the
// new rate.
func (r *Runner) AdjustCyclesPerFrame(delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setCycles(r.cycles + delta)
}

func (r *Runner) setCycles(n int) int {
	r.cycles = clampCycles(n)
	r.logger.Debug("Execution rate changed", log.Int("cycles_per_frame", r.cycles))
	return r.cycles
}

func clampCycles(n int) int {
	return max(1, min(n, MaxCyclesPerFrame))
}

// ToggleTrace switches the instruction trace of the machine and returns
// whether it is on afterwards.
func (r *Runner) ToggleTrace() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	on := !r.vm.Tracing()
	r.vm.SetTrace(on)
	r.logger.Info("Instruction trace", log.Bool("enabled", on))
	return on
}

// SetBreakpoint pauses execution before the instruction at addr runs.
func (r *Runner) SetBreakpoint(addr uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breaks[addr] = struct{}{}
}

// ClearBreakpoints removes all breakpoints.
func (r *Runner) ClearBreakpoints() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breaks = make(map[uint16]struct{})
}

// Swap resets the machine and loads a new program image, keeping the
// runner controls. An image that does not fit is rejected before the
// machine is touched.
func (r *Runner) Swap(image []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(image)
}

// Restart reloads the image last passed to Swap.
func (r *Runner) Restart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.image == nil {
		return errNoImage
	}
	return r.load(r.image)
}

func (r *Runner) load(image []byte) error {
	if len(image) > chip8.MaxProgramSize {
		return &chip8.SizeError{Size: len(image), Max: chip8.MaxProgramSize}
	}
	r.vm.Reset()
	if err := r.vm.LoadROM(image); err != nil {
		return err
	}
	r.image = append(r.image[:0:0], image...)
	r.logger.Debug("Program loaded", log.Int("size", len(image)))
	return nil
}

// Inspect calls fn with the machine while execution is held. fn must not
// keep a reference to the machine.
func (r *Runner) Inspect(fn func(vm *chip8.Chip8)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.vm)
}

// KeyChange delivers a key transition outside of the frontend poll.
func (r *Runner) KeyChange(key uint8, pressed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vm.KeyChange(key, pressed)
}
