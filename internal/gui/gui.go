// Package gui presents the CHIP-8 display in a desktop window and maps the
// keyboard onto the 16 key pad.
package gui

import (
	"strings"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/colornames"

	"github.com/koushik255/chip8go/chip8"
	"github.com/koushik255/chip8go/internal/runner"
)

// Title is the window title.
const Title = "CHIP-8 Emulator"

// keyMap maps the left block of a QWERTY keyboard onto the pad layout
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
var keyMap = map[pixelgl.Button]uint8{
	pixelgl.Key1: 0x1, pixelgl.Key2: 0x2, pixelgl.Key3: 0x3, pixelgl.Key4: 0xC,
	pixelgl.KeyQ: 0x4, pixelgl.KeyW: 0x5, pixelgl.KeyE: 0x6, pixelgl.KeyR: 0xD,
	pixelgl.KeyA: 0x7, pixelgl.KeyS: 0x8, pixelgl.KeyD: 0x9, pixelgl.KeyF: 0xE,
	pixelgl.KeyZ: 0xA, pixelgl.KeyX: 0x0, pixelgl.KeyC: 0xB, pixelgl.KeyV: 0xF,
}

// memDumpSize is the number of bytes logged by the memory dump key.
const memDumpSize = 64

type control int

const (
	ctlPause control = iota
	ctlFaster
	ctlSlower
	ctlTrace
	ctlRegisters
	ctlKeypad
	ctlMemory
)

// controlKeys are the emulator controls. None of them overlaps the pad.
var controlKeys = map[pixelgl.Button]control{
	pixelgl.KeyP:     ctlPause,
	pixelgl.KeyUp:    ctlFaster,
	pixelgl.KeyDown:  ctlSlower,
	pixelgl.KeySpace: ctlTrace,
	pixelgl.KeyI:     ctlRegisters,
	pixelgl.KeyK:     ctlKeypad,
	pixelgl.KeyM:     ctlMemory,
}

// Window is a runner.Frontend backed by a pixelgl window.
type Window struct {
	win   *pixelgl.Window
	imd   *imdraw.IMDraw
	scale float64
	frame chip8.Frame

	run    *runner.Runner
	logger *log.Logger
}

var _ runner.Frontend = (*Window)(nil)

// Run hands the main thread to pixelgl and calls f on it. All Window
// methods must be called from f.
func Run(f func()) {
	pixelgl.Run(f)
}

// New opens a window showing the display enlarged by scale.
func New(scale float64) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  Title,
		Bounds: pixel.R(0, 0, chip8.Width*scale, chip8.Height*scale),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating window")
	}

	return &Window{
		win:   win,
		imd:   imdraw.New(nil),
		scale: scale,
	}, nil
}

// Attach enables the control keys. Their output goes to logger.
func (w *Window) Attach(r *runner.Runner, logger *log.Logger) {
	w.run = r
	w.logger = logger
}

// Poll draws the last presented frame, processes window events and returns
// the pad key transitions since the previous call.
func (w *Window) Poll() []runner.KeyEvent {
	w.draw()
	w.win.Update()

	if w.run != nil {
		for button, ctl := range controlKeys {
			if w.win.JustPressed(button) {
				w.apply(ctl)
			}
		}
	}

	var events []runner.KeyEvent
	for button, key := range keyMap {
		if w.win.JustPressed(button) {
			events = append(events, runner.KeyEvent{Key: key, Pressed: true})
		}
		if w.win.JustReleased(button) {
			events = append(events, runner.KeyEvent{Key: key, Pressed: false})
		}
	}
	return events
}

// Present stores the frame to draw on the next Poll.
func (w *Window) Present(frame chip8.Frame) {
	w.frame = frame
}

// Closed reports whether the window was closed.
func (w *Window) Closed() bool {
	return w.win.Closed()
}

// apply runs the action bound to a control key.
func (w *Window) apply(ctl control) {
	switch ctl {
	case ctlPause:
		if w.run.TogglePause() {
			w.logger.Info("Paused")
		} else {
			w.logger.Info("Resumed")
		}
	case ctlFaster, ctlSlower:
		delta := 1
		if ctl == ctlSlower {
			delta = -1
		}
		n := w.run.AdjustCyclesPerFrame(delta)
		w.logger.Info("Execution rate", log.Int("cycles_per_frame", n))
	case ctlTrace:
		w.run.ToggleTrace()
	case ctlRegisters:
		var regs chip8.Registers
		w.run.Inspect(func(vm *chip8.Chip8) { regs = vm.Registers() })
		w.logger.Info("Registers", log.String("state", regs.String()))
	case ctlKeypad:
		var keys [chip8.KeyCount]bool
		w.run.Inspect(func(vm *chip8.Chip8) { keys = vm.Keypad() })
		w.logger.Info("Keypad", log.String("keys", chip8.FormatKeypad(keys)))
	case ctlMemory:
		w.logger.Info("Memory", log.String("dump", w.dumpMemory()))
	}
}

// dumpMemory renders memDumpSize bytes from PC, 16 byte aligned.
func (w *Window) dumpMemory() string {
	var buf strings.Builder
	w.run.Inspect(func(vm *chip8.Chip8) {
		start := int(vm.PC) &^ 0xF
		end := min(start+memDumpSize, chip8.MemorySize)
		if err := vm.DumpMemory(&buf, start, end); err != nil {
			buf.WriteString(err.Error())
		}
	})
	return strings.TrimRight(buf.String(), "\n")
}

func (w *Window) draw() {
	w.win.Clear(colornames.Black)
	w.imd.Clear()
	w.imd.Color = colornames.White

	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			if w.frame.Pixel(x, y) == 0 {
				continue
			}
			lo, hi := cellBounds(x, y, w.scale)
			w.imd.Push(lo, hi)
			w.imd.Rectangle(0)
		}
	}

	w.imd.Draw(w.win)
}

// cellBounds returns the window rectangle of display pixel (x, y). Window
// coordinates grow upwards while display rows grow downwards.
func cellBounds(x, y int, scale float64) (pixel.Vec, pixel.Vec) {
	row := chip8.Height - 1 - y
	return pixel.V(float64(x)*scale, float64(row)*scale),
		pixel.V(float64(x+1)*scale, float64(row+1)*scale)
}
