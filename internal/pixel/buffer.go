package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
)

// BytesPerPixel is the size of one BGRA pixel.
const BytesPerPixel = 4

// Buffer is an addressable 2D array of premultiplied BGRA pixels.
//
// Buffer implements image.Image so it can be handed directly to encoders.
// At returns color.RGBA, which is itself premultiplied, so no conversion
// beyond a channel swizzle takes place.
type Buffer struct {
	width  int
	height int
	stride int
	pix    []uint8
}

// NewBuffer allocates a transparent buffer of the given size.
// Negative dimensions are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := width * BytesPerPixel
	return &Buffer{
		width:  width,
		height: height,
		stride: stride,
		pix:    make([]uint8, stride*height),
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Stride returns the distance in bytes between vertically adjacent pixels.
func (b *Buffer) Stride() int { return b.stride }

// Pix returns the underlying storage. Callers that write to it bypass ROI
// guarantees and must know what they are doing.
func (b *Buffer) Pix() []uint8 { return b.pix }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image. Out-of-range coordinates return transparent.
// Colour channels above alpha, which some ops can produce on translucent
// pixels, are clamped so encoders always see a valid premultiplied colour.
func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	c := b.GetPixel(x, y)
	return color.RGBA{R: min(c.R, c.A), G: min(c.G, c.A), B: min(c.B, c.A), A: c.A}
}

// Row returns the bytes of row y covering columns [x0, x1). The slice is the
// only bounds check made for the span; callers index it freely afterwards.
func (b *Buffer) Row(y, x0, x1 int) []uint8 {
	off := y*b.stride + x0*BytesPerPixel
	return b.pix[off : off+(x1-x0)*BytesPerPixel : off+(x1-x0)*BytesPerPixel]
}

// GetPixel returns the pixel at (x, y). Coordinates must be inside Bounds.
func (b *Buffer) GetPixel(x, y int) ColorBgra {
	i := y*b.stride + x*BytesPerPixel
	p := b.pix[i : i+4 : i+4]
	return ColorBgra{B: p[0], G: p[1], R: p[2], A: p[3]}
}

// SetPixel writes the pixel at (x, y). Coordinates must be inside Bounds.
func (b *Buffer) SetPixel(x, y int, c ColorBgra) {
	i := y*b.stride + x*BytesPerPixel
	p := b.pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.B, c.G, c.R, c.A
}

// Fill sets every pixel in the buffer to c.
func (b *Buffer) Fill(c ColorBgra) {
	b.FillRect(b.Bounds(), c)
}

// FillRect sets every pixel inside r to c. r is clipped to the buffer.
func (b *Buffer) FillRect(r image.Rectangle, c ColorBgra) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Row(y, r.Min.X, r.Max.X)
		for i := 0; i < len(row); i += BytesPerPixel {
			row[i], row[i+1], row[i+2], row[i+3] = c.B, c.G, c.R, c.A
		}
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		width:  b.width,
		height: b.height,
		stride: b.stride,
		pix:    make([]uint8, len(b.pix)),
	}
	copy(out.pix, b.pix)
	return out
}

// CopyRect copies the pixels of r from src into dst at the same coordinates.
// r is clipped to both buffers.
func CopyRect(dst, src *Buffer, r image.Rectangle) {
	r = r.Intersect(dst.Bounds()).Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(dst.Row(y, r.Min.X, r.Max.X), src.Row(y, r.Min.X, r.Max.X))
	}
}

// SubBuffer copies the pixels of r into a new buffer whose origin is r.Min.
func (b *Buffer) SubBuffer(r image.Rectangle) *Buffer {
	r = r.Intersect(b.Bounds())
	out := NewBuffer(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(out.Row(y-r.Min.Y, 0, r.Dx()), b.Row(y, r.Min.X, r.Max.X))
	}
	return out
}

// Paste writes src into b with src's origin placed at pt. Pixels falling
// outside b are dropped.
func (b *Buffer) Paste(src *Buffer, pt image.Point) {
	r := src.Bounds().Add(pt).Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(b.Row(y, r.Min.X, r.Max.X), src.Row(y-pt.Y, r.Min.X-pt.X, r.Max.X-pt.X))
	}
}

// Equal reports whether two buffers have identical size and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for y := 0; y < b.height; y++ {
		if !bytes.Equal(b.Row(y, 0, b.width), o.Row(y, 0, o.width)) {
			return false
		}
	}
	return true
}

// Checksum returns an xxhash64 digest of the visible pixels. Two buffers with
// equal checksums are, for practical purposes, bit-identical.
func (b *Buffer) Checksum() uint64 {
	h := xxhash.New()
	for y := 0; y < b.height; y++ {
		_, _ = h.Write(b.Row(y, 0, b.width))
	}
	return h.Sum64()
}

// ChecksumHex formats Checksum as 16 hex digits.
func (b *Buffer) ChecksumHex() string {
	return fmt.Sprintf("%016x", b.Checksum())
}
