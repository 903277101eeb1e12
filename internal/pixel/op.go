package pixel

import (
	"image"
	"math"
	"sync/atomic"
)

// Op transforms the pixels of src into dst over a set of ROIs.
//
// Implementations must leave pixels outside the ROIs untouched and must be
// safe when dst and src are the same buffer. An empty ROI slice is a no-op.
type Op interface {
	Apply(dst, src *Buffer, rois []image.Rectangle)
}

// lutBuilds counts lookup-table constructions across all ops. Tests use it
// to prove that tables are built once per parameter set, not per pixel.
var lutBuilds atomic.Int64

// rowFunc transforms one row segment. dst and src have the same length and
// may share backing storage.
type rowFunc func(dst, src []uint8)

// applyRows runs fn over every row segment of every ROI. The bounds check
// happens when the row slices are taken, once per row.
func applyRows(dst, src *Buffer, rois []image.Rectangle, fn rowFunc) {
	for _, r := range rois {
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			fn(dst.Row(y, r.Min.X, r.Max.X), src.Row(y, r.Min.X, r.Max.X))
		}
	}
}

// Desaturate replaces B, G and R with the pixel's intensity. Alpha is kept.
type Desaturate struct{}

// Apply implements Op.
func (Desaturate) Apply(dst, src *Buffer, rois []image.Rectangle) {
	applyRows(dst, src, rois, func(d, s []uint8) {
		for i := 0; i+3 < len(s); i += BytesPerPixel {
			v := uint8((7471*uint32(s[i]) + 38470*uint32(s[i+1]) + 19595*uint32(s[i+2])) >> 16)
			a := s[i+3]
			d[i], d[i+1], d[i+2], d[i+3] = v, v, v, a
		}
	})
}

// Invert flips each colour channel. In premultiplied space the inverse of
// channel c is A-c, which keeps the result a valid premultiplied colour.
type Invert struct{}

// Apply implements Op.
func (Invert) Apply(dst, src *Buffer, rois []image.Rectangle) {
	applyRows(dst, src, rois, func(d, s []uint8) {
		for i := 0; i+3 < len(s); i += BytesPerPixel {
			a := s[i+3]
			d[i], d[i+1], d[i+2], d[i+3] = a-min(s[i], a), a-min(s[i+1], a), a-min(s[i+2], a), a
		}
	})
}

// Level remaps each colour channel from [inLo, inHi] to [outLo, outHi] with a
// per-channel gamma curve. The mapping is baked into three 256-entry tables
// when the Level is created.
type Level struct {
	inLo, inHi   ColorBgra
	outLo, outHi ColorBgra
	gamma        [3]float64
	curves       [3][256]uint8
	valid        bool
}

// NewLevel builds a Level op. gamma is indexed B, G, R.
//
// The op is invalid (and Apply does nothing) when any channel has
// inHi <= inLo, outHi < outLo, or a negative gamma.
func NewLevel(inLo, inHi ColorBgra, gamma [3]float64, outLo, outHi ColorBgra) *Level {
	l := &Level{
		inLo:  inLo,
		inHi:  inHi,
		outLo: outLo,
		outHi: outHi,
		gamma: gamma,
	}
	l.buildCurves()
	return l
}

// NewIdentityLevel returns a Level that maps every value to itself.
func NewIdentityLevel() *Level {
	return NewLevel(Black, White, [3]float64{1, 1, 1}, Black, White)
}

// LevelAutoFromLoMdHi builds a Level that stretches [lo, hi] to the full
// range, choosing per-channel gammas that move md to the midpoint.
func LevelAutoFromLoMdHi(lo, md, hi ColorBgra) *Level {
	var gamma [3]float64
	for c := 0; c < 3; c++ {
		l, m, h := float64(lo.Channel(c)), float64(md.Channel(c)), float64(hi.Channel(c))
		if l < m && m < h {
			g := math.Log(0.5) / math.Log((m-l)/(h-l))
			gamma[c] = math.Max(0.1, math.Min(10, g))
		} else {
			gamma[c] = 1
		}
	}
	return NewLevel(lo, hi, gamma, Black, White)
}

func (l *Level) buildCurves() {
	lutBuilds.Add(1)

	for c := 0; c < 3; c++ {
		if l.outHi.Channel(c) < l.outLo.Channel(c) || l.inHi.Channel(c) <= l.inLo.Channel(c) || l.gamma[c] < 0 {
			l.valid = false
			return
		}
	}
	l.valid = true

	for c := 0; c < 3; c++ {
		inLo, inHi := float64(l.inLo.Channel(c)), float64(l.inHi.Channel(c))
		outLo, outHi := float64(l.outLo.Channel(c)), float64(l.outHi.Channel(c))
		for i := 0; i < 256; i++ {
			v := float64(i) - inLo
			switch {
			case v < 0:
				l.curves[c][i] = uint8(outLo)
			case v+inLo >= inHi:
				l.curves[c][i] = uint8(outHi)
			default:
				out := outLo + (outHi-outLo)*math.Pow(v/(inHi-inLo), l.gamma[c])
				l.curves[c][i] = uint8(math.Max(0, math.Min(255, out)))
			}
		}
	}
}

// Valid reports whether the level mapping is meaningful. Effects must not
// rely on Apply for an invalid op; it is a no-op.
func (l *Level) Valid() bool { return l.valid }

// Gamma returns the per-channel gamma (B, G, R).
func (l *Level) Gamma() [3]float64 { return l.gamma }

// InputRange returns the low and high input colours.
func (l *Level) InputRange() (lo, hi ColorBgra) { return l.inLo, l.inHi }

// Map returns the transformed value of v on channel c (0=B, 1=G, 2=R).
func (l *Level) Map(c int, v uint8) uint8 {
	if !l.valid {
		return v
	}
	return l.curves[c][v]
}

// Apply implements Op.
func (l *Level) Apply(dst, src *Buffer, rois []image.Rectangle) {
	if !l.valid {
		return
	}
	cb, cg, cr := &l.curves[0], &l.curves[1], &l.curves[2]
	applyRows(dst, src, rois, func(d, s []uint8) {
		for i := 0; i+3 < len(s); i += BytesPerPixel {
			d[i], d[i+1], d[i+2], d[i+3] = cb[s[i]], cg[s[i+1]], cr[s[i+2]], s[i+3]
		}
	})
}

// Posterize quantises each colour channel into a fixed number of bands.
type Posterize struct {
	levels [3][256]uint8 // B, G, R
}

// NewPosterize builds the per-channel band tables. Each count must lie in
// [1, 256]; callers validate before construction.
func NewPosterize(red, green, blue int) *Posterize {
	lutBuilds.Add(1)
	p := &Posterize{}
	p.levels[0] = posterizeLevels(blue)
	p.levels[1] = posterizeLevels(green)
	p.levels[2] = posterizeLevels(red)
	return p
}

// posterizeLevels spreads n representative values evenly over 0..255 and
// assigns each input value to a band. The last band absorbs the remainder.
func posterizeLevels(n int) [256]uint8 {
	var levels [256]uint8
	if n < 1 {
		n = 1
	}
	if n > 256 {
		n = 256
	}

	reps := make([]uint8, n)
	for i := 1; i < n; i++ {
		reps[i] = uint8((255 * i) / (n - 1))
	}

	j, k := 0, 0
	for i := 0; i < 256; i++ {
		levels[i] = reps[j]
		k += n
		if k > 255 {
			k -= 255
			j++
		}
	}
	return levels
}

// Map returns the posterized value of v on channel c (0=B, 1=G, 2=R).
func (p *Posterize) Map(c int, v uint8) uint8 { return p.levels[c][v] }

// Apply implements Op.
func (p *Posterize) Apply(dst, src *Buffer, rois []image.Rectangle) {
	lb, lg, lr := &p.levels[0], &p.levels[1], &p.levels[2]
	applyRows(dst, src, rois, func(d, s []uint8) {
		for i := 0; i+3 < len(s); i += BytesPerPixel {
			d[i], d[i+1], d[i+2], d[i+3] = lb[s[i]], lg[s[i+1]], lr[s[i+2]], s[i+3]
		}
	})
}
