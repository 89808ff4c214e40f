// Package matriz drives a 5x5 WS2812 LED matrix over a single data line.
//
// The matrix keeps an in-memory buffer of packed color words, one per LED in
// physical chain order. Pixel writes only touch the buffer; an explicit
// Render pushes the whole buffer through the transmit peripheral in chain
// order. The chain is wired as a serpentine with the origin mirrored on the
// Y axis, so logical coordinates are translated by the layout before any
// entry is stored.
package matriz

import (
	"fmt"

	"github.com/ASCCJR/matriz5x5/internal/layout"
	"github.com/ASCCJR/matriz5x5/internal/led"
)

// Board dimensions.
const (
	Width    = 5
	Height   = 5
	LedCount = Width * Height
)

// DefaultLayout is the wiring of the 5x5 board: rows snake along X and the
// first chain position sits on the logical bottom row.
func DefaultLayout() layout.Layout {
	return layout.Layout{
		Dim:   layout.Dim{X: Width, Y: Height},
		Order: layout.Serpentine{XFlipOddRows: true, YMirror: true},
	}
}

// Matrix owns the pixel buffer and the transmit peripheral. It is not safe
// for concurrent use: a single caller mutates it and Render must run to
// completion without anything else touching the peripheral.
type Matrix struct {
	drv led.Driver
	lay layout.Layout
	buf []uint32
}

// New returns a matrix for the default 5x5 board wiring. The driver is
// expected to be configured already (program loaded, pin and bit rate set by
// its constructor).
func New(drv led.Driver) *Matrix {
	m, _ := NewWithLayout(drv, DefaultLayout())
	return m
}

// NewWithLayout returns a matrix with an explicit wiring layout.
func NewWithLayout(drv led.Driver, lay layout.Layout) (*Matrix, error) {
	if lay.Count() <= 0 {
		return nil, fmt.Errorf("matriz: invalid layout dimensions %dx%d", lay.Dim.X, lay.Dim.Y)
	}
	return &Matrix{
		drv: drv,
		lay: lay,
		buf: make([]uint32, lay.Count()),
	}, nil
}

// Layout returns the wiring layout in use.
func (m *Matrix) Layout() layout.Layout {
	return m.lay
}

// Clear turns every pixel off in the buffer. The physical matrix keeps its
// last frame until Render.
func (m *Matrix) Clear() {
	for i := range m.buf {
		m.buf[i] = 0
	}
}

// SetPixel stores the color for the LED at logical x,y. Out-of-range
// coordinates are ignored.
func (m *Matrix) SetPixel(x, y int, r, g, b uint8) {
	if !m.lay.InBounds(x, y) {
		return
	}
	m.buf[m.lay.Index(x, y)] = PackRGB(r, g, b)
}

// Pixel returns the packed color stored for logical x,y, zero when out of
// range.
func (m *Matrix) Pixel(x, y int) uint32 {
	if !m.lay.InBounds(x, y) {
		return 0
	}
	return m.buf[m.lay.Index(x, y)]
}

// Render flushes the buffer to the matrix. Entries go out in ascending chain
// order, left-shifted 8 bits to align with the peripheral's 32-bit shift
// width; each push blocks until the peripheral accepts the word. The first
// transport failure aborts the frame.
func (m *Matrix) Render() error {
	for _, w := range m.buf {
		if err := m.drv.Push(w << 8); err != nil {
			return fmt.Errorf("matriz: render: %w", err)
		}
	}
	if err := m.drv.Latch(); err != nil {
		return fmt.Errorf("matriz: render: %w", err)
	}
	return nil
}

// Close releases the transmit peripheral.
func (m *Matrix) Close() error {
	return m.drv.Close()
}
