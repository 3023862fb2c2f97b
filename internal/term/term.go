// Package term runs the emulator inside a terminal. The display is drawn
// with half block characters; in debug mode it is framed by register,
// disassembly and log panes and a command line.
package term

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/koushik255/chip8go/chip8"
	"github.com/koushik255/chip8go/internal/disasm"
	"github.com/koushik255/chip8go/internal/runner"
)

// KeyHold is how long a key counts as held after the terminal reported it.
// Terminals only report presses, so keys are released when it elapses.
const KeyHold = 150 * time.Millisecond

// padKeys uses the same layout as the window frontend.
var padKeys = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Terminal is a runner.Frontend drawing into a tview application.
type Terminal struct {
	debug bool
	run   *runner.Runner

	app    *tview.Application
	screen *tview.Box
	regs   *tview.TextView
	code   *tview.TextView
	log    *tview.TextView
	input  *tview.InputField

	mu     sync.Mutex
	frame  chip8.Frame
	keys   keyLatch
	closed bool
}

var _ runner.Frontend = (*Terminal)(nil)

// New builds the terminal user interface. With debug set the debugger panes
// are shown.
func New(debug bool) *Terminal {
	t := &Terminal{
		debug: debug,
		app:   tview.NewApplication(),
		screen: tview.NewBox().
			SetBorder(true).
			SetTitle(" CHIP-8 "),
		regs: tview.NewTextView().
			SetWrap(false),
		code: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		input: tview.NewInputField().
			SetLabel("> "),
		keys: keyLatch{hold: KeyHold},
	}
	t.screen.SetDrawFunc(t.drawScreen)
	t.log.SetChangedFunc(func() { t.app.Draw() })
	t.regs.SetBackgroundColor(tcell.ColorDarkBlue)
	t.code.SetBorder(true).SetTitle(" code ")
	t.log.SetBorder(true).SetTitle(" log ")
	t.app.SetInputCapture(t.captureKey)

	if !debug {
		t.app.SetRoot(t.screen, true)
		return t
	}

	top := tview.NewFlex().
		AddItem(t.screen, chip8.Width+2, 0, false).
		AddItem(t.regs, 0, 1, false)
	panes := tview.NewFlex().
		AddItem(t.code, 0, 1, false).
		AddItem(t.log, 0, 2, false)
	rows := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, chip8.Height/2+2, 0, false).
		AddItem(panes, 0, 1, false).
		AddItem(t.input, 1, 0, true)
	t.input.SetDoneFunc(t.commandDone)
	t.app.SetRoot(rows, true).SetFocus(t.input)
	return t
}

// Attach connects the debugger commands to the runner.
func (t *Terminal) Attach(r *runner.Runner) {
	t.run = r
}

// LogWriter returns the log pane. It is only shown in debug mode.
func (t *Terminal) LogWriter() io.Writer {
	return t.log
}

// Run shows the interface until the user quits or Stop is called.
func (t *Terminal) Run() error {
	err := t.app.Run()
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return err
}

// Stop closes the interface.
func (t *Terminal) Stop() {
	t.app.Stop()
}

// Poll implements runner.Frontend.
func (t *Terminal) Poll() []runner.KeyEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keys.poll(time.Now())
}

// Present implements runner.Frontend.
func (t *Terminal) Present(frame chip8.Frame) {
	t.mu.Lock()
	t.frame = frame
	t.mu.Unlock()
	t.app.Draw()
}

// Closed implements runner.Frontend.
func (t *Terminal) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// StateFunc updates the debugger panes. It is passed to the runner.
func (t *Terminal) StateFunc(s runner.Snapshot) {
	regs := formatState(s)
	code := disasm.Format(s.Registers.PC, s.Code)

	t.app.QueueUpdateDraw(func() {
		switch s.Kind {
		case runner.BreakState:
			t.regs.SetTextColor(tcell.ColorYellow)
			t.regs.SetBackgroundColor(tcell.ColorDarkBlue)
		case runner.HaltState:
			t.regs.SetTextColor(tcell.ColorWhite)
			t.regs.SetBackgroundColor(tcell.ColorDarkRed)
		default:
			t.regs.SetTextColor(tcell.ColorWhite)
			t.regs.SetBackgroundColor(tcell.ColorDarkBlue)
		}
		t.regs.SetText(regs)
		t.code.SetText(code)
	})
}

func (t *Terminal) captureKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyTab:
		if t.debug {
			if t.app.GetFocus() == t.input {
				t.app.SetFocus(t.screen)
			} else {
				t.app.SetFocus(t.input)
			}
			return nil
		}
	case tcell.KeyEscape:
		if !t.debug {
			t.app.Stop()
			return nil
		}
	case tcell.KeyRune:
		if t.debug && t.app.GetFocus() == t.input {
			return ev
		}
		if key, ok := padKeys[unicode.ToLower(ev.Rune())]; ok {
			t.mu.Lock()
			t.keys.press(key, time.Now())
			t.mu.Unlock()
			return nil
		}
	}
	return ev
}

func (t *Terminal) drawScreen(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	ix, iy, iw, ih := t.screen.GetInnerRect()

	t.mu.Lock()
	frame := t.frame
	t.mu.Unlock()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for row := 0; row < chip8.Height/2 && row < ih; row++ {
		for col, ch := range renderRow(&frame, row) {
			if col >= iw {
				break
			}
			screen.SetContent(ix+col, iy+row, ch, nil, style)
		}
	}
	return ix, iy, iw, ih
}

func (t *Terminal) commandDone(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	line := t.input.GetText()
	if line == "" {
		return
	}
	t.input.SetText("")

	cmd, err := parseCommand(line)
	if err != nil {
		fmt.Fprintln(t.log, err)
		return
	}
	t.execute(cmd)
}

func (t *Terminal) execute(cmd command) {
	if cmd.kind == cmdExit {
		t.app.Stop()
		return
	}
	if t.run == nil {
		return
	}

	switch cmd.kind {
	case cmdStep:
		t.run.Step(cmd.count)
	case cmdRun:
		t.run.Resume()
		fmt.Fprintln(t.log, "running")
	case cmdPause:
		t.run.Pause()
		fmt.Fprintln(t.log, "paused")
	case cmdBreak:
		t.run.SetBreakpoint(cmd.addr)
		fmt.Fprintf(t.log, "set break %03X\n", cmd.addr)
	case cmdClear:
		t.run.ClearBreakpoints()
		fmt.Fprintln(t.log, "cleared breaks")
	case cmdMem:
		end := min(int(cmd.addr)+memDumpSize, chip8.MemorySize)
		t.run.Inspect(func(vm *chip8.Chip8) {
			if err := vm.DumpMemory(t.log, int(cmd.addr), end); err != nil {
				fmt.Fprintln(t.log, err)
			}
		})
	case cmdReset:
		if err := t.run.Restart(); err != nil {
			fmt.Fprintln(t.log, err)
			return
		}
		fmt.Fprintln(t.log, "reset")
	case cmdSpeed:
		n := t.run.SetCyclesPerFrame(cmd.count)
		fmt.Fprintf(t.log, "%d cycles per frame\n", n)
	case cmdTrace:
		if t.run.ToggleTrace() {
			fmt.Fprintln(t.log, "trace on")
		} else {
			fmt.Fprintln(t.log, "trace off")
		}
	}
}

// formatState renders the register pane.
func formatState(s runner.Snapshot) string {
	status := "[" + s.Kind.String() + "]"
	if s.Err != nil {
		status += " " + s.Err.Error()
	}
	return fmt.Sprintf("%s\n%s\nkeys %s\n", status, s.Registers, chip8.FormatKeypad(s.Keypad))
}

// renderRow returns terminal row row of the frame. Every character covers
// two display rows.
func renderRow(frame *chip8.Frame, row int) []rune {
	line := make([]rune, chip8.Width)
	for x := range line {
		top := frame.Set(x, row*2)
		bottom := frame.Set(x, row*2+1)
		switch {
		case top && bottom:
			line[x] = '█'
		case top:
			line[x] = '▀'
		case bottom:
			line[x] = '▄'
		default:
			line[x] = ' '
		}
	}
	return line
}

// keyLatch turns key presses into press and release transitions.
type keyLatch struct {
	hold    time.Duration
	until   [chip8.KeyCount]time.Time
	pending []runner.KeyEvent
}

// press marks key as held for another hold period. Only the first press of
// a hold produces a transition.
func (l *keyLatch) press(key uint8, now time.Time) {
	if l.until[key].IsZero() {
		l.pending = append(l.pending, runner.KeyEvent{Key: key, Pressed: true})
	}
	l.until[key] = now.Add(l.hold)
}

// poll releases expired keys and returns the transitions since the last poll.
func (l *keyLatch) poll(now time.Time) []runner.KeyEvent {
	for key, until := range l.until {
		if until.IsZero() || now.Before(until) {
			continue
		}
		l.until[key] = time.Time{}
		l.pending = append(l.pending, runner.KeyEvent{Key: uint8(key), Pressed: false})
	}
	events := l.pending
	l.pending = nil
	return events
}
