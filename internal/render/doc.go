// Package render orchestrates effect application on a layered canvas.
//
// A Coordinator takes an effect, a Workspace and a set of target regions
// and performs one edit: configuration, validation, rendering, a history
// record and an invalidation notice. It owns the history stack, so Undo,
// Redo and JumpTo also go through it and invalidate the regions they
// restore.
//
// # Rendering
//
// The layer buffer is copied before rendering and the effect draws from the
// copy into the layer. With more than one worker each ROI is cut into row
// bands rendered concurrently. Effects that need whole-image statistics
// (effects.Preparer) derive them once before the bands start, so banded
// output is byte-identical to a sequential render.
//
// # History
//
// Each applied edit pushes a record holding the before and after pixels of
// the union of its ROIs. Effects whose parameters are a no-op, cancelled
// configurations and degenerate transforms push nothing.
//
// # Invalidation
//
// Invalidator merges dirty rectangles into one pending region. Notify never
// blocks; delivery happens from Run in a separate goroutine or
// synchronously through Flush.
package render
