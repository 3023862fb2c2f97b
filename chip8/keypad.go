package chip8

import "fmt"

// KeyChange records a key transition from the host input. A press while the
// machine awaits a key stores the key number in the register named by the
// waiting FX0A instruction and resumes execution.
func (c *Chip8) KeyChange(key uint8, pressed bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: 0x%X", ErrInvalidKey, key)
	}

	c.keys[key] = pressed
	if pressed && c.state == AwaitingKey {
		c.V[c.waitReg] = key
		c.state = Running
		c.status.Keystroke = false
	}
	return nil
}

// IsPressed reports whether the key is held down. Keys outside 0x0-0xF are
// never pressed.
func (c *Chip8) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return c.keys[key]
}
