// Package pixel provides the raster primitives the effects engine works on.
//
// A Buffer is a contiguous block of 32-bit pixels stored in BGRA byte order
// with premultiplied alpha. All operations address pixels in absolute canvas
// coordinates where (0,0) is the top-left corner.
//
// # Regions of Interest
//
// Every operation that mutates a Buffer takes a slice of image.Rectangle
// values (ROIs). Pixels outside the supplied ROIs are never written. ROIs are
// expected to be clipped to the buffer bounds by the caller (see ClipRects);
// the row accessors check bounds once per row segment, not once per pixel, so
// an unclipped ROI panics with an index error rather than being silently
// trimmed.
//
// # Pixel Operations
//
// An Op transforms source pixels into destination pixels over a set of ROIs.
// Source and destination may be the same Buffer. The concrete ops in this
// package (Desaturate, Level, Posterize, Invert) precompute lookup tables at
// construction so the per-pixel work is a handful of table reads.
//
// # Histograms
//
// Histogram accumulates per-channel counts over a region and derives an
// auto-level Level op from the distribution. Partial histograms computed over
// disjoint row bands can be merged by addition, which is how
// UpdateHistogramParallel spreads the scan across CPUs.
//
// # Thread Safety
//
// Ops are immutable after construction and may be shared between goroutines.
// A Buffer has no internal locking; concurrent writers must be given disjoint
// ROIs.
package pixel
