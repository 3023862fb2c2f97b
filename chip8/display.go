package chip8

const (
	// Width is the framebuffer width in pixels.
	Width = 64
	// Height is the framebuffer height in pixels.
	Height = 32
)

// Frame is the monochrome framebuffer, one byte (0 or 1) per pixel in
// row-major order.
type Frame [Width * Height]byte

// index converts a coordinate to a cell index, wrapping both axes so any
// coordinate addresses a pixel.
func index(x, y int) int {
	x %= Width
	if x < 0 {
		x += Width
	}
	y %= Height
	if y < 0 {
		y += Height
	}
	return y*Width + x
}

// Pixel returns the pixel at (x, y), wrapping out of range coordinates.
func (f *Frame) Pixel(x, y int) byte {
	return f[index(x, y)]
}

// Set reports whether the pixel at (x, y) is lit.
func (f *Frame) Set(x, y int) bool {
	return f.Pixel(x, y) != 0
}

// flip toggles the pixel at (x, y) and reports whether it was lit before,
// which for a sprite draw means a collision.
func (f *Frame) flip(x, y int) bool {
	i := index(x, y)
	was := f[i] != 0
	f[i] ^= 1
	return was
}
