package pixel

import "image"

// ClipRects intersects every ROI with bounds and drops the ones that end up
// empty. The input slice is not modified.
func ClipRects(rois []image.Rectangle, bounds image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rois))
	for _, r := range rois {
		r = r.Canon().Intersect(bounds)
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// UnionRects returns the smallest rectangle containing every ROI.
func UnionRects(rois []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for _, r := range rois {
		u = u.Union(r)
	}
	return u
}

// SplitRows cuts r into at most n horizontal bands of near-equal height.
// The bands are disjoint and together cover r exactly.
func SplitRows(r image.Rectangle, n int) []image.Rectangle {
	h := r.Dy()
	if n < 1 {
		n = 1
	}
	if n > h {
		n = h
	}
	if n <= 1 {
		if r.Empty() {
			return nil
		}
		return []image.Rectangle{r}
	}

	bands := make([]image.Rectangle, 0, n)
	base, extra := h/n, h%n
	y := r.Min.Y
	for i := 0; i < n; i++ {
		bh := base
		if i < extra {
			bh++
		}
		bands = append(bands, image.Rect(r.Min.X, y, r.Max.X, y+bh))
		y += bh
	}
	return bands
}

