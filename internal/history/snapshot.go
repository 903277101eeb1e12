package history

import (
	"image"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// RegionSnapshot is a Payload holding the pixels of one rectangle of a
// buffer before and after an edit. Undo and Redo copy the stored pixels
// back, so repeated round trips are bit-exact.
type RegionSnapshot struct {
	target *pixel.Buffer
	rect   image.Rectangle
	before *pixel.Buffer
	after  *pixel.Buffer
}

// CaptureRegion records rect of target as the after state and the same
// rect of before, a buffer of the same size holding the pre-edit pixels,
// as the before state. rect is clipped to target.
func CaptureRegion(target, before *pixel.Buffer, rect image.Rectangle) *RegionSnapshot {
	rect = rect.Intersect(target.Bounds())
	return &RegionSnapshot{
		target: target,
		rect:   rect,
		before: before.SubBuffer(rect),
		after:  target.SubBuffer(rect),
	}
}

// Undo implements Payload.
func (s *RegionSnapshot) Undo() { s.target.Paste(s.before, s.rect.Min) }

// Redo implements Payload.
func (s *RegionSnapshot) Redo() { s.target.Paste(s.after, s.rect.Min) }

// Bounds implements Payload.
func (s *RegionSnapshot) Bounds() image.Rectangle { return s.rect }

// Bytes implements Payload.
func (s *RegionSnapshot) Bytes() int {
	return len(s.before.Pix()) + len(s.after.Pix())
}
