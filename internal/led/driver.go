package led

import "periph.io/x/conn/v3/physic"

// BitRate is the WS2812 data rate. The protocol is fixed at 800kHz,
// non-inverted, one wire.
const BitRate = 800 * physic.KiloHertz

// Driver is the timing-generation peripheral behind the matrix, reduced to
// the word-level contract the render loop needs: accept one packed 32-bit
// color word at a time, blocking until the peripheral has room for it.
//
// Push must not reorder or drop words; the chain decodes position from
// arrival order. Latch marks the end of a frame and holds the line idle long
// enough for the LEDs to apply what they were sent.
type Driver interface {
	Push(word uint32) error
	Latch() error
	Close() error
}
