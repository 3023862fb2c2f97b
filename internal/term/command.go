package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koushik255/chip8go/chip8"
)

// memDumpSize is the number of bytes shown by the mem command.
const memDumpSize = 64

type commandKind int

const (
	cmdStep commandKind = iota
	cmdRun
	cmdPause
	cmdBreak
	cmdClear
	cmdMem
	cmdReset
	cmdSpeed
	cmdTrace
	cmdExit
)

type command struct {
	kind  commandKind
	addr  uint16
	count int
}

// parseCommand parses a debugger command line:
//
//	step [n]     execute n instructions (default 1)
//	run          continue execution
//	pause        pause execution
//	break <addr> pause before the instruction at addr
//	clear        remove all breakpoints
//	mem <addr>   dump memory starting at addr
//	reset        reload the program
//	speed <n>    run n instructions per frame
//	trace        toggle the instruction trace
//	exit         quit
//
// Addresses are hexadecimal with an optional 0x or $ prefix.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("empty command")
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "s", "step":
		cmd := command{kind: cmdStep, count: 1}
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return command{}, fmt.Errorf("invalid step count %q", args[0])
			}
			cmd.count = n
		}
		return cmd, nil

	case "r", "run", "c", "continue":
		return command{kind: cmdRun}, nil

	case "p", "pause":
		return command{kind: cmdPause}, nil

	case "b", "break", "m", "mem":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%s needs an address", name)
		}
		addr, err := parseAddr(args[0])
		if err != nil {
			return command{}, err
		}
		kind := cmdBreak
		if name[0] == 'm' {
			kind = cmdMem
		}
		return command{kind: kind, addr: addr}, nil

	case "clear":
		return command{kind: cmdClear}, nil

	case "reset":
		return command{kind: cmdReset}, nil

	case "speed":
		if len(args) != 1 {
			return command{}, fmt.Errorf("speed needs a cycle count")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return command{}, fmt.Errorf("invalid cycle count %q", args[0])
		}
		return command{kind: cmdSpeed, count: n}, nil

	case "t", "trace":
		return command{kind: cmdTrace}, nil

	case "q", "quit", "exit":
		return command{kind: cmdExit}, nil
	}
	return command{}, fmt.Errorf("unknown command %q", name)
}

func parseAddr(s string) (uint16, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil || v >= chip8.MemorySize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}
