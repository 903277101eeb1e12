package effects

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// tableBuilds counts brightness/contrast table constructions.
var tableBuilds atomic.Int64

// BrightnessContrastData holds the user-adjustable parameters.
type BrightnessContrastData struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
}

// IsDefault implements Data.
func (d *BrightnessContrastData) IsDefault() bool {
	return d.Brightness == 0 && d.Contrast == 0
}

// Validate implements Data. Both values must lie in [-100, 100].
func (d *BrightnessContrastData) Validate() error {
	if d.Brightness < -100 || d.Brightness > 100 {
		return fmt.Errorf("%w: brightness %d outside [-100, 100]", ErrInvalidParameter, d.Brightness)
	}
	if d.Contrast < -100 || d.Contrast > 100 {
		return fmt.Errorf("%w: contrast %d outside [-100, 100]", ErrInvalidParameter, d.Contrast)
	}
	return nil
}

// BrightnessContrast shifts brightness and scales contrast around mid-gray.
//
// The mapping is a 256x256 table indexed by (pixel intensity, channel
// value). It is rebuilt only when the parameters change, and the hot path
// does two integer lookups per channel.
type BrightnessContrast struct {
	info
	data BrightnessContrastData

	mu       sync.Mutex
	table    []uint8
	divide   int
	tableFor BrightnessContrastData
	built    bool
}

// NewBrightnessContrast returns the effect with neutral parameters.
func NewBrightnessContrast() *BrightnessContrast {
	return &BrightnessContrast{info: info{
		id:       "brightness-contrast",
		name:     "Brightness / Contrast",
		icon:     "Menu.Adjustments.BrightnessAndContrast.png",
		category: CategoryAdjustments,
	}}
}

func (e *BrightnessContrast) Configurable() bool { return true }
func (e *BrightnessContrast) Data() Data         { return &e.data }

// calculate returns the lookup table for the current parameters, building
// it on first use after a change. With contrast at +100 (divide == 0) the
// table degenerates to a 256-entry threshold indexed by intensity alone.
func (e *BrightnessContrast) calculate() ([]uint8, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.built && e.tableFor == e.data {
		return e.table, e.divide
	}

	brightness, contrast := e.data.Brightness, e.data.Contrast
	var multiply, divide int
	switch {
	case contrast < 0:
		multiply, divide = contrast+100, 100
	case contrast > 0:
		multiply, divide = 100, 100-contrast
	default:
		multiply, divide = 1, 1
	}

	if e.table == nil {
		e.table = make([]uint8, 65536)
	}
	table := e.table

	switch divide {
	case 0:
		for intensity := 0; intensity < 256; intensity++ {
			if intensity+brightness < 128 {
				table[intensity] = 0
			} else {
				table[intensity] = 255
			}
		}
	case 100:
		for intensity := 0; intensity < 256; intensity++ {
			shift := (intensity-127)*multiply/divide + 127 - intensity + brightness
			row := table[intensity*256 : intensity*256+256]
			for col := range row {
				row[col] = pixel.ClampByte(col + shift)
			}
		}
	default:
		for intensity := 0; intensity < 256; intensity++ {
			shift := (intensity-127+brightness)*multiply/divide + 127 - intensity
			row := table[intensity*256 : intensity*256+256]
			for col := range row {
				row[col] = pixel.ClampByte(col + shift)
			}
		}
	}

	tableBuilds.Add(1)
	e.divide = divide
	e.tableFor = e.data
	e.built = true
	return table, divide
}

// Render implements Effect.
func (e *BrightnessContrast) Render(src, dst *pixel.Buffer, rois []image.Rectangle) {
	table, divide := e.calculate()

	for _, r := range rois {
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			s := src.Row(y, r.Min.X, r.Max.X)
			d := dst.Row(y, r.Min.X, r.Max.X)
			for i := 0; i+3 < len(s); i += pixel.BytesPerPixel {
				b, g, red, a := s[i], s[i+1], s[i+2], s[i+3]
				intensity := int((7471*uint32(b) + 38470*uint32(g) + 19595*uint32(red)) >> 16)
				if divide == 0 {
					c := table[intensity]
					d[i], d[i+1], d[i+2], d[i+3] = c, c, c, a
					continue
				}
				lut := table[intensity*256 : intensity*256+256 : intensity*256+256]
				d[i], d[i+1], d[i+2], d[i+3] = lut[b], lut[g], lut[red], a
			}
		}
	}
}
