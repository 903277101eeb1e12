package pixel

import "image/color"

// ColorBgra is a single premultiplied pixel in the buffer's native byte order.
type ColorBgra struct {
	B uint8 `json:"b"`
	G uint8 `json:"g"`
	R uint8 `json:"r"`
	A uint8 `json:"a"`
}

// Common colours.
var (
	Black       = ColorBgra{A: 255}
	White       = ColorBgra{B: 255, G: 255, R: 255, A: 255}
	Transparent = ColorBgra{}
)

// FromColor converts any color.Color into a premultiplied ColorBgra.
func FromColor(c color.Color) ColorBgra {
	r, g, b, a := c.RGBA()
	return ColorBgra{B: uint8(b >> 8), G: uint8(g >> 8), R: uint8(r >> 8), A: uint8(a >> 8)}
}

// RGBA implements color.Color. The stored channels are already premultiplied.
func (c ColorBgra) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = uint32(c.A)
	a |= a << 8
	return
}

// Intensity returns the perceptual luma of the colour as a byte, using
// fixed-point weights (0.114 B, 0.587 G, 0.299 R) scaled by 65536.
func (c ColorBgra) Intensity() uint8 {
	return uint8((7471*uint32(c.B) + 38470*uint32(c.G) + 19595*uint32(c.R)) >> 16)
}

// Channel returns channel i in BGRA order (0=B, 1=G, 2=R, 3=A).
func (c ColorBgra) Channel(i int) uint8 {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.G
	case 2:
		return c.R
	default:
		return c.A
	}
}

// Blend4 mixes four colours with 16-bit weights that must sum to 65536.
// Colour channels are weighted by each sample's alpha so that transparent
// samples do not darken the result.
func Blend4(c1 ColorBgra, w1 uint32, c2 ColorBgra, w2 uint32, c3 ColorBgra, w3 uint32, c4 ColorBgra, w4 uint32) ColorBgra {
	const half = 32768

	af := uint64(c1.A)*uint64(w1) + uint64(c2.A)*uint64(w2) + uint64(c3.A)*uint64(w3) + uint64(c4.A)*uint64(w4)
	a := (af + half) >> 16
	if a == 0 {
		return Transparent
	}

	mix := func(v1, v2, v3, v4 uint8) uint8 {
		sum := uint64(c1.A)*uint64(v1)*uint64(w1) +
			uint64(c2.A)*uint64(v2)*uint64(w2) +
			uint64(c3.A)*uint64(v3)*uint64(w3) +
			uint64(c4.A)*uint64(v4)*uint64(w4)
		return uint8(sum / af)
	}

	return ColorBgra{
		B: mix(c1.B, c2.B, c3.B, c4.B),
		G: mix(c1.G, c2.G, c3.G, c4.G),
		R: mix(c1.R, c2.R, c3.R, c4.R),
		A: uint8(a),
	}
}

// ClampByte clamps v to [0,255].
func ClampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
