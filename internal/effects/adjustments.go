package effects

import (
	"image"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// Sepia desaturates the image and then tints it warm with a per-channel
// gamma curve.
type Sepia struct {
	info
	level *pixel.Level
}

// NewSepia returns the sepia effect. The tint curve is built here, once.
func NewSepia() *Sepia {
	return &Sepia{
		info: info{
			id:       "sepia",
			name:     "Sepia",
			icon:     "Menu.Adjustments.Sepia.png",
			category: CategoryAdjustments,
		},
		level: pixel.NewLevel(pixel.Black, pixel.White, [3]float64{1.2, 1.0, 0.8}, pixel.Black, pixel.White),
	}
}

func (e *Sepia) Configurable() bool { return false }
func (e *Sepia) Data() Data         { return nil }

// Render implements Effect.
func (e *Sepia) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	pixel.Desaturate{}.Apply(dst, src, rois)
	e.level.Apply(dst, dst, rois)
}

// AutoLevel stretches each channel so that its observed range covers
// 0..255. The range is measured over the whole source, so the result of a
// partial ROI matches the same region of a full render.
type AutoLevel struct {
	info
}

// NewAutoLevel returns the auto-level effect.
func NewAutoLevel() *AutoLevel {
	return &AutoLevel{info: info{
		id:       "auto-level",
		name:     "Auto Level",
		icon:     "Menu.Adjustments.AutoLevel.png",
		category: CategoryAdjustments,
	}}
}

func (e *AutoLevel) Configurable() bool { return false }
func (e *AutoLevel) Data() Data         { return nil }

// Prepare implements Preparer. It returns nil for a flat source.
func (e *AutoLevel) Prepare(src *pixel.Buffer) pixel.Op {
	h := pixel.NewHistogram()
	h.UpdateHistogramParallel(src, src.Bounds())
	level := h.MakeLevelsAuto()
	if !level.Valid() {
		return nil
	}
	return level
}

// Render implements Effect.
func (e *AutoLevel) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	if op := e.Prepare(src); op != nil {
		op.Apply(dst, src, rois)
	}
}

// InvertColors replaces every colour with its complement.
type InvertColors struct {
	info
}

// NewInvertColors returns the invert-colors effect.
func NewInvertColors() *InvertColors {
	return &InvertColors{info: info{
		id:       "invert-colors",
		name:     "Invert Colors",
		icon:     "Menu.Adjustments.InvertColors.png",
		category: CategoryAdjustments,
	}}
}

func (e *InvertColors) Configurable() bool { return false }
func (e *InvertColors) Data() Data         { return nil }

// Render implements Effect.
func (e *InvertColors) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	pixel.Invert{}.Apply(dst, src, rois)
}
