package pixel

import (
	"image"
	"testing"
)

// createGrayRamp creates a one-row buffer holding the gray values lo..hi
func createGrayRamp(lo, hi int) *Buffer {
	b := NewBuffer(hi-lo+1, 1)
	for v := lo; v <= hi; v++ {
		b.SetPixel(v-lo, 0, ColorBgra{B: uint8(v), G: uint8(v), R: uint8(v), A: 255})
	}
	return b
}

func TestHistogram_Counts(t *testing.T) {
	b := createUniformBuffer(5, 4, ColorBgra{B: 10, G: 20, R: 30, A: 255})
	h := NewHistogram()
	h.UpdateHistogram(b, b.Bounds())

	if h.Total() != 20 {
		t.Errorf("Total: got %d, want 20", h.Total())
	}
	for c, v := range []int{10, 20, 30} {
		if got := h.Bins(c)[v]; got != 20 {
			t.Errorf("channel %d bin %d: got %d, want 20", c, v, got)
		}
	}
}

func TestHistogram_ClipsROI(t *testing.T) {
	b := createUniformBuffer(4, 4, White)
	h := NewHistogram()
	h.UpdateHistogram(b, image.Rect(2, 2, 100, 100))

	if h.Total() != 4 {
		t.Errorf("Total: got %d, want 4", h.Total())
	}

	h.UpdateHistogram(b, image.Rect(50, 50, 60, 60))
	if h.Total() != 4 {
		t.Errorf("empty ROI changed Total to %d", h.Total())
	}
}

func TestHistogram_BinsIsCopy(t *testing.T) {
	h := NewHistogram()
	bins := h.Bins(0)
	bins[0] = 99
	if h.Bins(0)[0] != 0 {
		t.Error("modifying Bins result changed the histogram")
	}
}

func TestHistogram_ParallelMatchesSequential(t *testing.T) {
	b := createPatternBuffer(97, 203)
	roi := image.Rect(3, 5, 90, 200)

	seq := NewHistogram()
	seq.UpdateHistogram(b, roi)

	par := NewHistogram()
	par.UpdateHistogramParallel(b, roi)

	if seq.Total() != par.Total() {
		t.Fatalf("Total: sequential %d, parallel %d", seq.Total(), par.Total())
	}
	for c := 0; c < 3; c++ {
		s, p := seq.Bins(c), par.Bins(c)
		for i := range s {
			if s[i] != p[i] {
				t.Fatalf("channel %d bin %d: sequential %d, parallel %d", c, i, s[i], p[i])
			}
		}
	}
}

func TestHistogram_PercentileAndMean(t *testing.T) {
	b := createGrayRamp(50, 200)
	h := NewHistogram()
	h.UpdateHistogram(b, b.Bounds())

	if got := h.Percentile(0.005); got.R != 50 {
		t.Errorf("low percentile: got %d, want 50", got.R)
	}
	if got := h.Percentile(0.995); got.R != 200 {
		t.Errorf("high percentile: got %d, want 200", got.R)
	}
	if got := h.Mean(); got.R != 125 || got.G != 125 || got.B != 125 {
		t.Errorf("Mean: got %+v, want 125", got)
	}
}

func TestHistogram_MakeLevelsAuto(t *testing.T) {
	t.Run("ramp stretches to full range", func(t *testing.T) {
		b := createGrayRamp(50, 200)
		h := NewHistogram()
		h.UpdateHistogram(b, b.Bounds())

		l := h.MakeLevelsAuto()
		if !l.Valid() {
			t.Fatal("expected valid level")
		}
		lo, hi := l.InputRange()
		if lo.R != 50 || hi.R != 200 {
			t.Errorf("InputRange: got %d..%d, want 50..200", lo.R, hi.R)
		}
		if l.Map(2, 50) != 0 || l.Map(2, 200) != 255 {
			t.Errorf("endpoints: got %d..%d, want 0..255", l.Map(2, 50), l.Map(2, 200))
		}
	})

	t.Run("uniform image is invalid", func(t *testing.T) {
		b := createUniformBuffer(8, 8, ColorBgra{B: 77, G: 77, R: 77, A: 255})
		h := NewHistogram()
		h.UpdateHistogram(b, b.Bounds())

		l := h.MakeLevelsAuto()
		if l.Valid() {
			t.Fatal("expected invalid level for uniform image")
		}

		dst := b.Clone()
		l.Apply(dst, b, []image.Rectangle{b.Bounds()})
		if !dst.Equal(b) {
			t.Error("invalid level modified the image")
		}
	})

	t.Run("empty histogram is invalid", func(t *testing.T) {
		if NewHistogram().MakeLevelsAuto().Valid() {
			t.Error("expected invalid level for empty histogram")
		}
	})
}

func TestHistogram_ChannelImage(t *testing.T) {
	b := createGrayRamp(0, 255)
	h := NewHistogram()
	h.UpdateHistogram(b, b.Bounds())

	img := h.ChannelImage(2)
	if img == nil || img.Bounds().Dx() != 256 {
		t.Fatalf("ChannelImage: got %v, want 256 wide image", img)
	}
}
