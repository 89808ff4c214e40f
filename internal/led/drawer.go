package led

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// DrawerDriver adapts a display.Drawer to the word-level Driver contract.
// Pushed words accumulate until Latch, which flushes one frame as a 1xN
// image. It backs both the nrzled hardware path and the console preview.
type DrawerDriver struct {
	d     display.Drawer
	words []uint32
}

// NewNRZ drives a WS2812 chain through the nrzled device on the given SPI
// port.
func NewNRZ(p spi.Port, pixels int) (*DrawerDriver, error) {
	opts := nrzled.Opts{
		NumPixels: pixels,
		Channels:  3,
		Freq:      BitRate*spiBitsPerBit + 100*physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("led: nrzled halt: %w", err)
	}
	return NewDrawer(d, pixels), nil
}

// NewScreen renders the chain as ANSI colors on the terminal, for running
// without hardware.
func NewScreen(pixels int) *DrawerDriver {
	return NewDrawer(screen.New(pixels), pixels)
}

// NewDrawer wraps an arbitrary drawer.
func NewDrawer(d display.Drawer, pixels int) *DrawerDriver {
	return &DrawerDriver{d: d, words: make([]uint32, 0, pixels)}
}

// Push queues one packed color word for the frame in flight.
func (d *DrawerDriver) Push(word uint32) error {
	d.words = append(d.words, word)
	return nil
}

// Latch converts the queued words back to RGB and draws the frame.
func (d *DrawerDriver) Latch() error {
	img := image.NewNRGBA(image.Rect(0, 0, len(d.words), 1))
	for i, w := range d.words {
		grb := w >> 8
		img.SetNRGBA(i, 0, color.NRGBA{
			R: uint8(grb >> 8),
			G: uint8(grb >> 16),
			B: uint8(grb),
			A: 255,
		})
	}
	d.words = d.words[:0]
	if err := d.d.Draw(d.d.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("led: draw: %w", err)
	}
	return nil
}

func (d *DrawerDriver) Close() error {
	return d.d.Halt()
}
