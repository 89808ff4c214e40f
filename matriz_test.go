package matriz_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ASCCJR/matriz5x5"
)

// recordDriver captures every pushed word, in order.
type recordDriver struct {
	words   []uint32
	latches int
	pushErr error
}

func (d *recordDriver) Push(word uint32) error {
	if d.pushErr != nil {
		return d.pushErr
	}
	d.words = append(d.words, word)
	return nil
}

func (d *recordDriver) Latch() error { d.latches++; return nil }
func (d *recordDriver) Close() error { return nil }

var TestRGBPacksToExpectedWord = []struct {
	R, G, B uint8
	Expect  uint32
}{
	{0xFF, 0x00, 0x00, 0x0000FF00},
	{0x00, 0xFF, 0x00, 0x00FF0000},
	{0x00, 0x00, 0xFF, 0x000000FF},
	{0xFF, 0xFF, 0xFF, 0x00FFFFFF},
	{0x12, 0x34, 0x56, 0x00341256},
}

func TestPackRGB(t *testing.T) {
	for k, v := range TestRGBPacksToExpectedWord {
		t.Run("Given RGB"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, PackRGB(v.R, v.G, v.B), "should pack GRB wire order")
		})
	}
}

func TestUnpackRGB(t *testing.T) {
	r, g, b := UnpackRGB(PackRGB(0x12, 0x34, 0x56))
	assert.Equal(t, uint8(0x12), r)
	assert.Equal(t, uint8(0x34), g)
	assert.Equal(t, uint8(0x56), b)
}

func TestSetPixelRoundtrip(t *testing.T) {
	m := New(&recordDriver{})

	m.SetPixel(2, 3, 10, 20, 30)
	assert.Equal(t, PackRGB(10, 20, 30), m.Pixel(2, 3))

	// Overwrite replaces the entry entirely.
	m.SetPixel(2, 3, 1, 2, 3)
	assert.Equal(t, PackRGB(1, 2, 3), m.Pixel(2, 3))
}

func TestSetPixelOutOfRangeIsNoop(t *testing.T) {
	m := New(&recordDriver{})
	m.SetPixel(1, 1, 9, 9, 9)

	for _, xy := range [][2]int{{5, 0}, {0, 5}, {5, 5}, {-1, 0}, {0, -1}} {
		m.SetPixel(xy[0], xy[1], 255, 255, 255)
	}

	// Only the valid write is visible.
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := uint32(0)
			if x == 1 && y == 1 {
				want = PackRGB(9, 9, 9)
			}
			assert.Equal(t, want, m.Pixel(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.Zero(t, m.Pixel(5, 5), "out-of-range read is zero")
}

func TestClear(t *testing.T) {
	m := New(&recordDriver{})
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			m.SetPixel(x, y, 255, 255, 255)
		}
	}

	m.Clear()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			assert.Zero(t, m.Pixel(x, y))
		}
	}

	// Idempotent.
	m.Clear()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			assert.Zero(t, m.Pixel(x, y))
		}
	}
}

func TestRenderPushesChainOrder(t *testing.T) {
	drv := &recordDriver{}
	m := New(drv)

	// Chain position 0 is logical (0,4); 24 is logical (4,0).
	m.SetPixel(0, 4, 0xAA, 0, 0)
	m.SetPixel(4, 0, 0, 0xBB, 0)

	require.NoError(t, m.Render())
	require.Len(t, drv.words, LedCount)
	assert.Equal(t, 1, drv.latches)

	assert.Equal(t, PackRGB(0xAA, 0, 0)<<8, drv.words[0])
	assert.Equal(t, PackRGB(0, 0xBB, 0)<<8, drv.words[24])
	for i := 1; i < 24; i++ {
		assert.Zero(t, drv.words[i], "chain position %d", i)
	}
}

func TestRenderShiftsEveryWord(t *testing.T) {
	drv := &recordDriver{}
	m := New(drv)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			m.SetPixel(x, y, uint8(x), uint8(y), uint8(x+y))
		}
	}

	require.NoError(t, m.Render())
	lay := m.Layout()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := PackRGB(uint8(x), uint8(y), uint8(x+y)) << 8
			assert.Equal(t, want, drv.words[lay.Index(x, y)])
		}
	}
}

func TestRenderStopsOnDriverError(t *testing.T) {
	errBroken := errors.New("peripheral fault")
	drv := &recordDriver{pushErr: errBroken}
	m := New(drv)

	err := m.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBroken)
	assert.Zero(t, drv.latches, "no latch after an aborted frame")
}

func TestNewWithLayoutRejectsEmptyLayout(t *testing.T) {
	_, err := NewWithLayout(&recordDriver{}, DefaultLayout())
	require.NoError(t, err)

	lay := DefaultLayout()
	lay.Dim.X = 0
	_, err = NewWithLayout(&recordDriver{}, lay)
	assert.Error(t, err)
}
