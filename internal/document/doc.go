// Package document models a layered canvas: equally sized pixel buffers
// stacked bottom to top, one of which is active for editing.
//
// Document satisfies render.Workspace, so the render coordinator can apply
// effects to it directly. Flatten composites the visible layers for export
// and previews.
package document
