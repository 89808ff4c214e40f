package matriz

// Channel positions inside a packed color word. The WS2812 shifts the green
// byte out first, so the wire order is GRB, not RGB.
const (
	greenOffset = 16
	redOffset   = 8
	blueOffset  = 0
)

// PackRGB converts the three color channels into the packed GRB wire order.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(g)<<greenOffset | uint32(r)<<redOffset | uint32(b)<<blueOffset
}

// UnpackRGB recovers the channels from a packed GRB word.
func UnpackRGB(c uint32) (r, g, b uint8) {
	return uint8(c >> redOffset), uint8(c >> greenOffset), uint8(c >> blueOffset)
}
