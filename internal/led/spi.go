package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Each WS2812 bit is stretched to 3 SPI bits: 0 -> 100, 1 -> 110. At 3x the
// 800kHz data rate the high/low proportions land inside the WS2812 timing
// tolerances.
const spiBitsPerBit = 3

// Opts configures an SPI-backed transmitter.
type Opts struct {
	// BitRate is the WS2812 data rate. Defaults to BitRate (800kHz).
	BitRate physic.Frequency
	// Invert drives the line inverted, for boards with an inverting level
	// shifter on the data pin.
	Invert bool
	// ResetUs is the end-of-frame latch time in microseconds. Defaults to
	// 300; the chain needs >= 280.
	ResetUs int
}

var defaultOpts = Opts{
	BitRate: BitRate,
	ResetUs: 300,
}

// SPI shifts packed color words out of a SPI port as a WS2812 bitstream.
// Each Push encodes the top 24 bits of the word (the low 8 are the shift
// alignment padding and never reach the wire) and blocks until the port has
// accepted the transfer.
type SPI struct {
	c     spi.Conn
	port  spi.PortCloser
	xor   byte
	reset []byte
	// Precomputed byte -> 24 encoded bits (3 bytes).
	lut [256][3]byte
}

// NewSPI prepares a WS2812 encoder on the given port. The port is clocked at
// 3x the data rate (2.4MHz for the standard 800kHz).
func NewSPI(p spi.Port, opts *Opts) (*SPI, error) {
	if opts == nil {
		opts = new(Opts)
		*opts = defaultOpts
	}
	rate := opts.BitRate
	if rate == 0 {
		rate = BitRate
	}
	resetUs := opts.ResetUs
	if resetUs <= 0 {
		resetUs = defaultOpts.ResetUs
	}

	c, err := p.Connect(rate*spiBitsPerBit, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("led: connect %s: %w", p, err)
	}

	s := &SPI{c: c}
	if pc, ok := p.(spi.PortCloser); ok {
		s.port = pc
	}
	if opts.Invert {
		s.xor = 0xFF
	}

	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			tri := uint32(0b100)
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = out<<3 | tri
		}
		s.lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}

	// Latch tail: idle line for resetUs. One byte covers 8/(3*rate) seconds;
	// at 2.4MHz that's ~3.33us per byte. Keep a floor so short configs still
	// latch reliably.
	n := resetUs / 3
	if n < 128 {
		n = 128
	}
	s.reset = make([]byte, n)
	for i := range s.reset {
		s.reset[i] = s.xor
	}

	return s, nil
}

func (s *SPI) encode(b byte, dst []byte) {
	dst[0] = s.lut[b][0] ^ s.xor
	dst[1] = s.lut[b][1] ^ s.xor
	dst[2] = s.lut[b][2] ^ s.xor
}

// Push transmits one packed color word, blocking for the duration of the
// transfer.
func (s *SPI) Push(word uint32) error {
	var enc [9]byte
	s.encode(byte(word>>24), enc[0:3])
	s.encode(byte(word>>16), enc[3:6])
	s.encode(byte(word>>8), enc[6:9])
	if err := s.c.Tx(enc[:], nil); err != nil {
		return fmt.Errorf("led: push: %w", err)
	}
	return nil
}

// Latch holds the line idle so the chain applies the frame.
func (s *SPI) Latch() error {
	if err := s.c.Tx(s.reset, nil); err != nil {
		return fmt.Errorf("led: latch: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}
