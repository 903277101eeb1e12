package effects

import (
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// PosterizeData holds the number of bands per colour channel.
type PosterizeData struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// IsDefault implements Data. 256 bands per channel is the identity.
func (d *PosterizeData) IsDefault() bool {
	return d.Red == 256 && d.Green == 256 && d.Blue == 256
}

// Validate implements Data. Each count must lie in [1, 256].
func (d *PosterizeData) Validate() error {
	for _, ch := range []struct {
		name string
		v    int
	}{{"red", d.Red}, {"green", d.Green}, {"blue", d.Blue}} {
		if ch.v < 1 || ch.v > 256 {
			return fmt.Errorf("%w: %s levels %d outside [1, 256]", ErrInvalidParameter, ch.name, ch.v)
		}
	}
	return nil
}

// Posterize reduces each channel to a fixed number of evenly spaced values.
type Posterize struct {
	info
	data PosterizeData

	mu    sync.Mutex
	op    *pixel.Posterize
	opFor PosterizeData
}

// NewPosterize returns the effect with 16 bands per channel.
func NewPosterize() *Posterize {
	return &Posterize{
		info: info{
			id:       "posterize",
			name:     "Posterize",
			icon:     "Menu.Adjustments.Posterize.png",
			category: CategoryAdjustments,
		},
		data: PosterizeData{Red: 16, Green: 16, Blue: 16},
	}
}

func (e *Posterize) Configurable() bool { return true }
func (e *Posterize) Data() Data         { return &e.data }

// pixelOp returns the band tables for the current parameters, rebuilding
// them only after a change.
func (e *Posterize) pixelOp() *pixel.Posterize {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.op == nil || e.opFor != e.data {
		e.op = pixel.NewPosterize(e.data.Red, e.data.Green, e.data.Blue)
		e.opFor = e.data
	}
	return e.op
}

// Render implements Effect.
func (e *Posterize) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	e.pixelOp().Apply(dst, src, rois)
}
