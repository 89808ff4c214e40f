package layout

type Dim struct{ X, Y int }

type Serpentine struct {
	XFlipOddRows bool
	YMirror      bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// Index maps a logical x,y -> linear chain index (0..N-1).
//
// The chain snakes row by row: with XFlipOddRows set, odd wiring rows run
// right-to-left. With YMirror set, the wiring origin is on the opposite edge
// from the logical origin, so y is flipped before the row direction is
// decided. Both flips act on the physical row, not the logical one.
func (l Layout) Index(x, y int) int {
	yy := y
	if l.Order.YMirror {
		yy = l.Dim.Y - 1 - y
	}
	xx := x
	if l.Order.XFlipOddRows && yy%2 == 1 {
		xx = l.Dim.X - 1 - x
	}
	return yy*l.Dim.X + xx
}

// InBounds reports whether x,y is a valid logical coordinate.
func (l Layout) InBounds(x, y int) bool {
	return x >= 0 && x < l.Dim.X && y >= 0 && y < l.Dim.Y
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y
}
