package effects

import (
	"fmt"
	"image"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// PixelateData holds the cell edge length in pixels.
type PixelateData struct {
	CellSize int `json:"cell_size"`
}

// IsDefault implements Data. One-pixel cells reproduce the source.
func (d *PixelateData) IsDefault() bool { return d.CellSize == 1 }

// Validate implements Data. CellSize must lie in [1, 100].
func (d *PixelateData) Validate() error {
	if d.CellSize < 1 || d.CellSize > 100 {
		return fmt.Errorf("%w: cell size %d outside [1, 100]", ErrInvalidParameter, d.CellSize)
	}
	return nil
}

// Pixelate replaces the image with a grid of flat cells.
//
// The grid is anchored at the image origin, so the cell containing a pixel
// does not depend on which ROI the pixel was rendered through. A cell that
// spans several ROIs gets the same colour in each of them.
type Pixelate struct {
	info
	data PixelateData
}

// NewPixelate returns the effect with 2x2 cells.
func NewPixelate() *Pixelate {
	return &Pixelate{
		info: info{
			id:       "pixelate",
			name:     "Pixelate",
			icon:     "Menu.Effects.Distort.Pixelate.png",
			category: CategoryDistort,
		},
		data: PixelateData{CellSize: 2},
	}
}

func (e *Pixelate) Configurable() bool { return true }
func (e *Pixelate) Data() Data         { return &e.data }

// cellBox returns the grid cell containing (x, y). Coordinates are
// non-negative once ROIs are clipped.
func cellBox(x, y, cellSize int) image.Rectangle {
	x0, y0 := x-x%cellSize, y-y%cellSize
	return image.Rect(x0, y0, x0+cellSize, y0+cellSize)
}

// cellColor blends the four corner pixels of cell, clipped to the source.
func cellColor(src *pixel.Buffer, cell image.Rectangle) pixel.ColorBgra {
	cell = cell.Intersect(src.Bounds())
	if cell.Empty() {
		return pixel.Transparent
	}
	left, top := cell.Min.X, cell.Min.Y
	right, bottom := cell.Max.X-1, cell.Max.Y-1
	return pixel.Blend4(
		src.GetPixel(left, top), 16384,
		src.GetPixel(right, top), 16384,
		src.GetPixel(left, bottom), 16384,
		src.GetPixel(right, bottom), 16384,
	)
}

// Render implements Effect. Each cell/ROI intersection is coloured once and
// the scan then jumps past it.
func (e *Pixelate) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	cellSize := e.data.CellSize
	if cellSize < 1 {
		cellSize = 1
	}
	dstBounds := dst.Bounds()

	for _, r := range rois {
		r = r.Intersect(dstBounds)
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; {
			yEnd := r.Max.Y
			for x := r.Min.X; x < r.Max.X; {
				cell := cellBox(x, y, cellSize)
				color := cellColor(src, cell)

				clipped := cell.Intersect(dstBounds)
				xEnd := min(r.Max.X, clipped.Max.X)
				yEnd = min(r.Max.Y, clipped.Max.Y)

				for y2 := y; y2 < yEnd; y2++ {
					row := dst.Row(y2, x, xEnd)
					for i := 0; i < len(row); i += pixel.BytesPerPixel {
						row[i], row[i+1], row[i+2], row[i+3] = color.B, color.G, color.R, color.A
					}
				}
				x = xEnd
			}
			y = yEnd
		}
	}
}
