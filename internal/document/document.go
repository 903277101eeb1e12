package document

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
	"github.com/ironsheep/image-effects-mcp/internal/render"
)

// ErrLayerIndex is returned for a layer index outside the document.
var ErrLayerIndex = errors.New("layer index out of range")

// Layer is one named pixel buffer of a document.
type Layer struct {
	name   string
	hidden bool
	buf    *pixel.Buffer
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Buffer returns the layer pixels. The buffer is shared, not copied.
func (l *Layer) Buffer() *pixel.Buffer { return l.buf }

// Hidden reports whether the layer is excluded from Flatten.
func (l *Layer) Hidden() bool { return l.hidden }

// Document is a stack of equally sized layers, bottom first, with one of
// them selected for editing. It implements render.Workspace.
type Document struct {
	mu      sync.RWMutex
	width   int
	height  int
	layers  []*Layer
	current int
}

// New creates a document with one "Background" layer filled with fill.
func New(width, height int, fill pixel.ColorBgra) *Document {
	buf := pixel.NewBuffer(width, height)
	buf.Fill(fill)
	return FromBuffer(buf)
}

// FromBuffer creates a document whose background layer is buf.
func FromBuffer(buf *pixel.Buffer) *Document {
	return &Document{
		width:  buf.Width(),
		height: buf.Height(),
		layers: []*Layer{{name: "Background", buf: buf}},
	}
}

// Width returns the canvas width.
func (d *Document) Width() int { return d.width }

// Height returns the canvas height.
func (d *Document) Height() int { return d.height }

// CanvasBounds implements render.Workspace.
func (d *Document) CanvasBounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// ActiveLayer implements render.Workspace.
func (d *Document) ActiveLayer() render.Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.layers) == 0 {
		return nil
	}
	return d.layers[d.current]
}

// CurrentLayer returns the index of the active layer.
func (d *Document) CurrentLayer() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// AddLayer appends a transparent layer on top and makes it active.
// An empty name gets "Layer N".
func (d *Document) AddLayer(name string) *Layer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name == "" {
		name = fmt.Sprintf("Layer %d", len(d.layers)+1)
	}
	l := &Layer{name: name, buf: pixel.NewBuffer(d.width, d.height)}
	d.layers = append(d.layers, l)
	d.current = len(d.layers) - 1
	return l
}

// SetCurrentLayer selects the layer at index i for editing.
func (d *Document) SetCurrentLayer(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.layers) {
		return fmt.Errorf("%w: %d (have %d)", ErrLayerIndex, i, len(d.layers))
	}
	d.current = i
	return nil
}

// SetLayerHidden shows or hides the layer at index i.
func (d *Document) SetLayerHidden(i int, hidden bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.layers) {
		return fmt.Errorf("%w: %d (have %d)", ErrLayerIndex, i, len(d.layers))
	}
	d.layers[i].hidden = hidden
	return nil
}

// Layers returns the layers bottom first. The slice is a copy; the layers
// are shared.
func (d *Document) Layers() []*Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Layer, len(d.layers))
	copy(out, d.layers)
	return out
}

// Flatten composites the visible layers bottom to top with premultiplied
// source-over into a new buffer.
func (d *Document) Flatten() *pixel.Buffer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := pixel.NewBuffer(d.width, d.height)
	for _, l := range d.layers {
		if l.hidden {
			continue
		}
		blendOver(out, l.buf)
	}
	return out
}

// blendOver composites src over dst in place. Both are premultiplied, so
// each channel is src + dst*(255-srcA)/255.
func blendOver(dst, src *pixel.Buffer) {
	r := dst.Bounds().Intersect(src.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		d := dst.Row(y, r.Min.X, r.Max.X)
		s := src.Row(y, r.Min.X, r.Max.X)
		for i := 0; i+3 < len(s); i += pixel.BytesPerPixel {
			sa := uint32(s[i+3])
			switch sa {
			case 255:
				d[i], d[i+1], d[i+2], d[i+3] = s[i], s[i+1], s[i+2], s[i+3]
			case 0:
				continue
			default:
				inv := 255 - sa
				for c := 0; c < 4; c++ {
					d[i+c] = pixel.ClampByte(int(uint32(s[i+c]) + (uint32(d[i+c])*inv+127)/255))
				}
			}
		}
	}
}
