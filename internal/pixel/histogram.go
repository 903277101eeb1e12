package pixel

import (
	"image"
	"sync"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/parallel"
)

// DefaultAutoLevelClip is the fraction of samples clipped at each end of the
// distribution when deriving auto levels.
const DefaultAutoLevelClip = 0.005

// Histogram counts channel values over a region of a buffer. Channels are
// indexed in buffer order: 0=B, 1=G, 2=R.
type Histogram struct {
	channels [3]histogram.Histogram
	total    int
}

// NewHistogram returns an empty histogram with 256 bins per channel.
func NewHistogram() *Histogram {
	h := &Histogram{}
	for c := range h.channels {
		h.channels[c] = histogram.Histogram{Bins: make([]int, 256)}
	}
	return h
}

// UpdateHistogram adds every pixel of roi in src to the counts. roi is
// clipped to the buffer since scanning is read-only.
func (h *Histogram) UpdateHistogram(src *Buffer, roi image.Rectangle) {
	roi = roi.Intersect(src.Bounds())
	if roi.Empty() {
		return
	}
	bb, bg, br := h.channels[0].Bins, h.channels[1].Bins, h.channels[2].Bins
	for y := roi.Min.Y; y < roi.Max.Y; y++ {
		row := src.Row(y, roi.Min.X, roi.Max.X)
		for i := 0; i+3 < len(row); i += BytesPerPixel {
			bb[row[i]]++
			bg[row[i+1]]++
			br[row[i+2]]++
		}
	}
	h.total += roi.Dx() * roi.Dy()
}

// UpdateHistogramParallel is UpdateHistogram spread across CPUs. Each worker
// fills a private histogram for its row band; the partials are merged by
// addition, so the result is identical to the sequential scan.
func (h *Histogram) UpdateHistogramParallel(src *Buffer, roi image.Rectangle) {
	roi = roi.Intersect(src.Bounds())
	if roi.Empty() {
		return
	}

	var mu sync.Mutex
	parallel.Line(roi.Dy(), func(start, end int) {
		part := NewHistogram()
		part.UpdateHistogram(src, image.Rect(roi.Min.X, roi.Min.Y+start, roi.Max.X, roi.Min.Y+end))
		mu.Lock()
		h.Merge(part)
		mu.Unlock()
	})
}

// Merge adds the counts of o into h.
func (h *Histogram) Merge(o *Histogram) {
	for c := range h.channels {
		dst, src := h.channels[c].Bins, o.channels[c].Bins
		for i := range dst {
			dst[i] += src[i]
		}
	}
	h.total += o.total
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() int { return h.total }

// Bins returns a copy of the counts for channel c (0=B, 1=G, 2=R).
func (h *Histogram) Bins(c int) []int {
	out := make([]int, len(h.channels[c].Bins))
	copy(out, h.channels[c].Bins)
	return out
}

// ChannelImage renders channel c as a 256x256 grayscale bar chart.
func (h *Histogram) ChannelImage(c int) *image.Gray {
	return h.channels[c].Image()
}

// Percentile returns, per channel, the smallest value whose cumulative count
// exceeds fraction of the total.
func (h *Histogram) Percentile(fraction float64) ColorBgra {
	var out [3]uint8
	limit := float64(h.total) * fraction
	for c := range h.channels {
		cum := h.channels[c].Cumulative()
		for i, v := range cum.Bins {
			if float64(v) > limit {
				out[c] = uint8(i)
				break
			}
		}
	}
	return ColorBgra{B: out[0], G: out[1], R: out[2], A: 255}
}

// Mean returns the per-channel average value, rounded down.
func (h *Histogram) Mean() ColorBgra {
	if h.total == 0 {
		return Black
	}
	var out [3]uint8
	for c := range h.channels {
		var sum int
		for i, v := range h.channels[c].Bins {
			sum += i * v
		}
		out[c] = uint8(sum / h.total)
	}
	return ColorBgra{B: out[0], G: out[1], R: out[2], A: 255}
}

// MakeLevelsAuto derives an auto-level op clipping DefaultAutoLevelClip of
// the samples at each end.
func (h *Histogram) MakeLevelsAuto() *Level {
	return h.MakeLevelsAutoClip(DefaultAutoLevelClip)
}

// MakeLevelsAutoClip derives an auto-level op that maps the [clip, 1-clip]
// percentile range of each channel onto [0, 255]. The returned op is invalid
// when any channel holds a single value, including the empty histogram.
func (h *Histogram) MakeLevelsAutoClip(clip float64) *Level {
	lo := h.Percentile(clip)
	md := h.Mean()
	hi := h.Percentile(1 - clip)
	return LevelAutoFromLoMdHi(lo, md, hi)
}
