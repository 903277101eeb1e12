package render

import (
	"context"
	"image"
	"sync"
)

// InvalidateFunc receives a canvas region that needs redrawing.
type InvalidateFunc func(image.Rectangle)

// Invalidator coalesces dirty rectangles for a display that may be slower
// than the edit stream. Rectangles are merged into a single pending union;
// a display that falls behind sees one larger region instead of a queue.
type Invalidator struct {
	fn InvalidateFunc

	mu      sync.Mutex
	pending image.Rectangle

	deliverMu sync.Mutex
	wake      chan struct{}
}

// NewInvalidator returns an Invalidator delivering to fn. A nil fn drops
// every region.
func NewInvalidator(fn InvalidateFunc) *Invalidator {
	return &Invalidator{
		fn:   fn,
		wake: make(chan struct{}, 1),
	}
}

// Notify adds r to the pending region. It never blocks.
func (inv *Invalidator) Notify(r image.Rectangle) {
	if r.Empty() {
		return
	}
	inv.mu.Lock()
	inv.pending = inv.pending.Union(r)
	inv.mu.Unlock()

	select {
	case inv.wake <- struct{}{}:
	default:
	}
}

// Pending returns the region not yet delivered.
func (inv *Invalidator) Pending() image.Rectangle {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.pending
}

// Flush delivers the pending region, if any, on the calling goroutine.
// Deliveries never overlap.
func (inv *Invalidator) Flush() {
	inv.deliverMu.Lock()
	defer inv.deliverMu.Unlock()

	inv.mu.Lock()
	r := inv.pending
	inv.pending = image.Rectangle{}
	inv.mu.Unlock()

	if !r.Empty() && inv.fn != nil {
		inv.fn(r)
	}
}

// Run delivers pending regions until ctx is done. It is meant to run in its
// own goroutine.
func (inv *Invalidator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-inv.wake:
			inv.Flush()
		}
	}
}
