package pixel

import (
	"image"
	"image/color"
	"testing"
)

// createUniformBuffer creates a buffer filled with a single colour
func createUniformBuffer(width, height int, c ColorBgra) *Buffer {
	b := NewBuffer(width, height)
	b.Fill(c)
	return b
}

// createPatternBuffer creates a buffer where every pixel has a distinct,
// position-derived colour
func createPatternBuffer(width, height int) *Buffer {
	b := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.SetPixel(x, y, ColorBgra{
				B: uint8(x * 17),
				G: uint8(y * 23),
				R: uint8((x + y) * 11),
				A: 255,
			})
		}
	}
	return b
}

func TestNewBuffer(t *testing.T) {
	b := NewBuffer(10, 7)
	if b.Width() != 10 || b.Height() != 7 {
		t.Errorf("dimensions: got %dx%d, want 10x7", b.Width(), b.Height())
	}
	if b.Stride() != 40 {
		t.Errorf("Stride: got %d, want 40", b.Stride())
	}
	if len(b.Pix()) != 280 {
		t.Errorf("len(Pix): got %d, want 280", len(b.Pix()))
	}
	if got := b.GetPixel(3, 3); got != Transparent {
		t.Errorf("new buffer pixel: got %+v, want transparent", got)
	}
}

func TestNewBuffer_NegativeDimensions(t *testing.T) {
	b := NewBuffer(-5, -1)
	if b.Width() != 0 || b.Height() != 0 {
		t.Errorf("dimensions: got %dx%d, want 0x0", b.Width(), b.Height())
	}
	if !b.Bounds().Empty() {
		t.Error("Bounds should be empty")
	}
}

func TestBuffer_SetGetPixel(t *testing.T) {
	b := NewBuffer(4, 4)
	c := ColorBgra{B: 1, G: 2, R: 3, A: 4}
	b.SetPixel(2, 1, c)

	if got := b.GetPixel(2, 1); got != c {
		t.Errorf("GetPixel: got %+v, want %+v", got, c)
	}

	// Storage is BGRA
	i := 1*b.Stride() + 2*BytesPerPixel
	if p := b.Pix()[i : i+4]; p[0] != 1 || p[1] != 2 || p[2] != 3 || p[3] != 4 {
		t.Errorf("byte order: got %v, want [1 2 3 4]", p)
	}
}

func TestBuffer_At(t *testing.T) {
	b := createUniformBuffer(3, 3, ColorBgra{B: 10, G: 20, R: 30, A: 40})

	got := b.At(1, 1).(color.RGBA)
	want := color.RGBA{R: 30, G: 20, B: 10, A: 40}
	if got != want {
		t.Errorf("At: got %+v, want %+v", got, want)
	}

	if got := b.At(5, 5).(color.RGBA); got != (color.RGBA{}) {
		t.Errorf("At out of bounds: got %+v, want zero", got)
	}
}

func TestBuffer_FillRect_Clips(t *testing.T) {
	b := NewBuffer(4, 4)
	b.FillRect(image.Rect(2, 2, 10, 10), White)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := Transparent
			if x >= 2 && y >= 2 {
				want = White
			}
			if got := b.GetPixel(x, y); got != want {
				t.Errorf("pixel (%d,%d): got %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestBuffer_CloneIsDeep(t *testing.T) {
	b := createPatternBuffer(5, 5)
	c := b.Clone()

	if !b.Equal(c) {
		t.Fatal("clone should equal original")
	}

	c.SetPixel(0, 0, White)
	if b.GetPixel(0, 0) == White {
		t.Error("modifying clone changed original")
	}
	if b.Equal(c) {
		t.Error("Equal should report the difference")
	}
}

func TestBuffer_SubBufferAndPaste(t *testing.T) {
	b := createPatternBuffer(8, 8)
	r := image.Rect(2, 3, 6, 7)

	sub := b.SubBuffer(r)
	if sub.Width() != 4 || sub.Height() != 4 {
		t.Fatalf("SubBuffer size: got %dx%d, want 4x4", sub.Width(), sub.Height())
	}
	if sub.GetPixel(0, 0) != b.GetPixel(2, 3) {
		t.Error("SubBuffer origin should map to r.Min")
	}

	dst := NewBuffer(8, 8)
	dst.Paste(sub, r.Min)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if dst.GetPixel(x, y) != b.GetPixel(x, y) {
				t.Fatalf("pasted pixel (%d,%d) differs", x, y)
			}
		}
	}
	if dst.GetPixel(0, 0) != Transparent {
		t.Error("Paste wrote outside the pasted region")
	}
}

func TestCopyRect(t *testing.T) {
	src := createPatternBuffer(6, 6)
	dst := NewBuffer(6, 6)

	CopyRect(dst, src, image.Rect(1, 1, 3, 3))

	if dst.GetPixel(1, 1) != src.GetPixel(1, 1) || dst.GetPixel(2, 2) != src.GetPixel(2, 2) {
		t.Error("CopyRect did not copy the rectangle")
	}
	if dst.GetPixel(3, 3) != Transparent {
		t.Error("CopyRect copied outside the rectangle")
	}
}

func TestBuffer_Checksum(t *testing.T) {
	a := createPatternBuffer(16, 9)
	b := createPatternBuffer(16, 9)

	if a.Checksum() != b.Checksum() {
		t.Error("identical buffers should have identical checksums")
	}

	b.SetPixel(15, 8, White)
	if a.Checksum() == b.Checksum() {
		t.Error("different buffers should have different checksums")
	}

	if len(a.ChecksumHex()) != 16 {
		t.Errorf("ChecksumHex length: got %d, want 16", len(a.ChecksumHex()))
	}
}

func TestColorBgra_Intensity(t *testing.T) {
	tests := []struct {
		name string
		c    ColorBgra
		want uint8
	}{
		{"black", Black, 0},
		{"white", White, 255},
		{"gray", ColorBgra{B: 128, G: 128, R: 128, A: 255}, 128},
		{"pure red", ColorBgra{R: 255, A: 255}, 76},
		{"pure green", ColorBgra{G: 255, A: 255}, 149},
		{"pure blue", ColorBgra{B: 255, A: 255}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Intensity(); got != tt.want {
				t.Errorf("Intensity: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBlend4(t *testing.T) {
	t.Run("identical colours", func(t *testing.T) {
		c := ColorBgra{B: 10, G: 100, R: 200, A: 180}
		if got := Blend4(c, 16384, c, 16384, c, 16384, c, 16384); got != c {
			t.Errorf("got %+v, want %+v", got, c)
		}
	})

	t.Run("all transparent", func(t *testing.T) {
		if got := Blend4(Transparent, 16384, Transparent, 16384, Transparent, 16384, Transparent, 16384); got != Transparent {
			t.Errorf("got %+v, want transparent", got)
		}
	})

	t.Run("black and white", func(t *testing.T) {
		got := Blend4(Black, 16384, Black, 16384, White, 16384, White, 16384)
		if got.A != 255 || got.R != 127 || got.G != 127 || got.B != 127 {
			t.Errorf("got %+v, want mid gray", got)
		}
	})
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.RGBA{R: 1, G: 2, B: 3, A: 4})
	want := ColorBgra{B: 3, G: 2, R: 1, A: 4}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestClipRects(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)
	rois := []image.Rectangle{
		image.Rect(-5, -5, 5, 5),
		image.Rect(20, 20, 30, 30),
		{Min: image.Pt(8, 8), Max: image.Pt(2, 2)}, // non-canonical
		{},
	}

	got := ClipRects(rois, bounds)
	want := []image.Rectangle{image.Rect(0, 0, 5, 5), image.Rect(2, 2, 8, 8)}
	if len(got) != len(want) {
		t.Fatalf("ClipRects: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rect %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnionRects(t *testing.T) {
	got := UnionRects([]image.Rectangle{image.Rect(1, 1, 2, 2), image.Rect(5, 0, 6, 9)})
	if want := image.Rect(1, 0, 6, 9); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !UnionRects(nil).Empty() {
		t.Error("union of nothing should be empty")
	}
}

func TestSplitRows(t *testing.T) {
	r := image.Rect(3, 10, 7, 20)

	tests := []struct {
		n         int
		wantBands int
	}{
		{1, 1},
		{3, 3},
		{10, 10},
		{50, 10}, // never more bands than rows
		{0, 1},
	}

	for _, tt := range tests {
		bands := SplitRows(r, tt.n)
		if len(bands) != tt.wantBands {
			t.Errorf("n=%d: got %d bands, want %d", tt.n, len(bands), tt.wantBands)
			continue
		}
		y := r.Min.Y
		for _, b := range bands {
			if b.Min.Y != y || b.Min.X != r.Min.X || b.Max.X != r.Max.X || b.Empty() {
				t.Errorf("n=%d: band %v does not continue coverage at y=%d", tt.n, b, y)
			}
			y = b.Max.Y
		}
		if y != r.Max.Y {
			t.Errorf("n=%d: bands end at %d, want %d", tt.n, y, r.Max.Y)
		}
	}

	if SplitRows(image.Rectangle{}, 4) != nil {
		t.Error("empty rect should produce no bands")
	}
}
