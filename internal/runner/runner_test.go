package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"github.com/koushik255/chip8go/chip8"
)

type fakeFrontend struct {
	pending  []KeyEvent
	frames   []chip8.Frame
	closed   bool
	pollings int
}

func (f *fakeFrontend) Poll() []KeyEvent {
	f.pollings++
	ev := f.pending
	f.pending = nil
	return ev
}

func (f *fakeFrontend) Present(frame chip8.Frame) { f.frames = append(f.frames, frame) }
func (f *fakeFrontend) Closed() bool              { return f.closed }

type fakeSink struct {
	tones []bool
}

func (s *fakeSink) SetTone(on bool) { s.tones = append(s.tones, on) }
func (s *fakeSink) Close() error    { return nil }

func image(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

type harness struct {
	vm       *chip8.Chip8
	frontend *fakeFrontend
	sink     *fakeSink
	runner   *Runner
	states   []Snapshot
}

func newHarness(t *testing.T, opts Options, words ...uint16) *harness {
	t.Helper()

	h := &harness{
		vm:       chip8.New(),
		frontend: &fakeFrontend{},
		sink:     &fakeSink{},
	}
	assert.NoError(t, h.vm.LoadROM(image(words...)))

	opts.StateFunc = func(s Snapshot) { h.states = append(h.states, s) }
	h.runner = New(h.vm, h.frontend, h.sink, log.NewTestLogger(t), opts)
	return h
}

func (h *harness) last() Snapshot {
	return h.states[len(h.states)-1]
}

func TestFrame_PresentOnRedraw(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 4},
		0x00E0, // CLS
		0x1202, // JP 0x202
	)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, 1, len(h.frontend.frames))
	assert.False(t, h.vm.Status().Redraw)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, 1, len(h.frontend.frames))
	assert.Equal(t, 2, h.frontend.pollings)
	assert.Equal(t, RunState, h.last().Kind)
}

func TestFrame_Sound(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 2},
		0x6005, // LD V0, 5
		0xF018, // LD ST, V0
		0x1204, // JP 0x204
	)

	for i := 0; i < 4; i++ {
		assert.NoError(t, h.runner.Frame())
	}

	want := []bool{true, true, true, false}
	if diff := cmp.Diff(want, h.sink.tones); diff != "" {
		t.Errorf("tones: (-want, +got)\n%s", diff)
	}
	assert.False(t, h.vm.Status().Sound)
}

func TestFrame_KeyWait(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 8},
		0xF10A, // LD V1, K
		0x1202, // JP 0x202
	)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, WaitState, h.last().Kind)
	assert.Equal(t, uint16(0x202), h.vm.PC)

	h.frontend.pending = []KeyEvent{{Key: 0x5, Pressed: true}}
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, RunState, h.last().Kind)
	assert.Equal(t, byte(0x5), h.vm.V[1])
	assert.True(t, h.last().Keypad[0x5])
}

func TestFrame_InvalidKeyIgnored(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1}, 0x1200)

	h.frontend.pending = []KeyEvent{{Key: 0x20, Pressed: true}}
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, RunState, h.last().Kind)
}

func TestBreakpointAndStep(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 10},
		0x6001, // LD V0, 1
		0x6102, // LD V1, 2
		0x6203, // LD V2, 3
		0x1206, // JP 0x206
	)
	h.runner.SetBreakpoint(0x204)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, BreakState, h.last().Kind)
	assert.Equal(t, uint16(0x204), h.last().Registers.PC)
	assert.Equal(t, byte(2), h.vm.V[1])
	assert.Equal(t, byte(0), h.vm.V[2])
	assert.True(t, h.runner.Paused())

	// The code window starts at the breakpoint.
	if diff := cmp.Diff(image(0x6203, 0x1206), h.last().Code[:4]); diff != "" {
		t.Errorf("code: (-want, +got)\n%s", diff)
	}

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, PauseState, h.last().Kind)
	assert.Equal(t, uint16(0x204), h.vm.PC)

	h.runner.Step(1)
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, PauseState, h.last().Kind)
	assert.Equal(t, byte(3), h.vm.V[2])
	assert.Equal(t, uint16(0x206), h.vm.PC)

	h.runner.Resume()
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, RunState, h.last().Kind)
	assert.False(t, h.runner.Paused())
}

func TestResumeStepsOverBreakpoint(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 3},
		0x7001, // ADD V0, 1
		0x1200, // JP 0x200
	)
	h.runner.SetBreakpoint(0x200)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, BreakState, h.last().Kind)
	assert.Equal(t, byte(0), h.vm.V[0])

	h.runner.Resume()
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, BreakState, h.last().Kind)
	assert.Equal(t, byte(1), h.vm.V[0])

	h.runner.ClearBreakpoints()
	h.runner.Resume()
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, RunState, h.last().Kind)
}

func TestFrame_Halt(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 4}, 0x00EE) // RET on empty stack

	err := h.runner.Frame()
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	assert.Equal(t, HaltState, h.last().Kind)
	assert.Equal(t, chip8.Halted, h.vm.State())
}

func TestFrame_PauseOnHalt(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 4, PauseOnHalt: true}, 0x00EE)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, HaltState, h.last().Kind)
	assert.True(t, errors.Is(h.last().Err, chip8.ErrStackUnderflow))
	assert.True(t, h.runner.Paused())

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, PauseState, h.last().Kind)
}

func TestSwap(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 4}, 0x6042, 0x1202)
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, byte(0x42), h.vm.V[0])

	next := image(0x6117, 0x1202)
	assert.NoError(t, h.runner.Swap(next))
	assert.Equal(t, uint16(chip8.ProgramStart), h.vm.PC)
	assert.Equal(t, byte(0), h.vm.V[0])

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, byte(0x17), h.vm.V[1])

	tooLarge := make([]byte, chip8.MaxProgramSize+1)
	assert.True(t, errors.Is(h.runner.Swap(tooLarge), chip8.ErrProgramTooLarge))
	assert.Equal(t, byte(0x17), h.vm.V[1])

	h.vm.V[1] = 0
	assert.NoError(t, h.runner.Restart())
	assert.Equal(t, uint16(chip8.ProgramStart), h.vm.PC)
	assert.Equal(t, byte(0x61), h.vm.Memory[chip8.ProgramStart])
}

func TestRestart_NoImage(t *testing.T) {
	h := newHarness(t, Options{}, 0x1200)
	assert.True(t, errors.Is(h.runner.Restart(), errNoImage))
}

func TestInspect(t *testing.T) {
	h := newHarness(t, Options{}, 0x1200)

	var pc uint16
	h.runner.Inspect(func(vm *chip8.Chip8) { pc = vm.PC })
	assert.Equal(t, uint16(chip8.ProgramStart), pc)
	assert.Equal(t, 1, h.runner.CyclesPerFrame())
}

func TestSetCyclesPerFrame(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1},
		0x7001, // ADD V0, 1
		0x1200, // JP 0x200
	)

	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, byte(1), h.vm.V[0])

	assert.Equal(t, 4, h.runner.SetCyclesPerFrame(4))
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, byte(3), h.vm.V[0])

	assert.Equal(t, 6, h.runner.AdjustCyclesPerFrame(2))
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, byte(6), h.vm.V[0])
	assert.Equal(t, 6, h.runner.CyclesPerFrame())
}

func TestSetCyclesPerFrame_Clamped(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 3}, 0x1200)

	assert.Equal(t, 1, h.runner.SetCyclesPerFrame(0))
	assert.Equal(t, 1, h.runner.AdjustCyclesPerFrame(-5))
	assert.Equal(t, MaxCyclesPerFrame, h.runner.SetCyclesPerFrame(MaxCyclesPerFrame+1))
	assert.Equal(t, MaxCyclesPerFrame, h.runner.AdjustCyclesPerFrame(1))
}

func TestSetCyclesPerFrame_Concurrent(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1}, 0x1200)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.runner.AdjustCyclesPerFrame(1)
		}
	}()
	for i := 0; i < 50; i++ {
		assert.NoError(t, h.runner.Frame())
	}
	<-done
	assert.Equal(t, 101, h.runner.CyclesPerFrame())
}

func TestTogglePause(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 2}, 0x7001, 0x1200)

	assert.True(t, h.runner.TogglePause())
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, PauseState, h.last().Kind)
	assert.Equal(t, byte(0), h.vm.V[0])

	assert.False(t, h.runner.TogglePause())
	assert.NoError(t, h.runner.Frame())
	assert.Equal(t, RunState, h.last().Kind)
	assert.Equal(t, byte(1), h.vm.V[0])
}

func TestToggleTrace(t *testing.T) {
	h := newHarness(t, Options{}, 0x1200)

	assert.False(t, h.vm.Tracing())
	assert.True(t, h.runner.ToggleTrace())
	assert.True(t, h.vm.Tracing())
	assert.NoError(t, h.runner.Frame())
	assert.False(t, h.runner.ToggleTrace())
}

func TestRun_FrontendClosed(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1}, 0x1200)
	h.frontend.closed = true

	assert.NoError(t, h.runner.Run(context.Background()))
	assert.Equal(t, 0, h.frontend.pollings)
	if diff := cmp.Diff([]bool{false}, h.sink.tones); diff != "" {
		t.Errorf("tones: (-want, +got)\n%s", diff)
	}
}

func TestRun_ContextDone(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1}, 0x1200)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, h.runner.Run(ctx))
	assert.True(t, h.frontend.pollings > 0)
}

func TestRun_Fault(t *testing.T) {
	h := newHarness(t, Options{CyclesPerFrame: 1}, 0x00EE)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.runner.Run(ctx)
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
}

func TestStateKind_String(t *testing.T) {
	assert.Equal(t, "run", RunState.String())
	assert.Equal(t, "break", BreakState.String())
	assert.Equal(t, "unknown", StateKind(42).String())
}
