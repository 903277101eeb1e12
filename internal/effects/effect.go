package effects

import (
	"errors"
	"image"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// Sentinel errors returned by effect configuration and lookup.
var (
	// ErrInvalidParameter is wrapped by every configuration error. It is
	// raised before rendering starts and never by Render itself.
	ErrInvalidParameter = errors.New("invalid effect parameter")

	// ErrUnknownEffect is returned when an ID is not registered.
	ErrUnknownEffect = errors.New("unknown effect")
)

// Menu categories used by the listing.
const (
	CategoryAdjustments = "Adjustments"
	CategoryDistort     = "Distort"
)

// Effect is a named unit of work that renders source pixels into a
// destination over a set of ROIs.
//
// Render may be called concurrently for disjoint ROIs of the same
// destination. It writes only inside the ROIs and reads src anywhere, so
// dst must not alias src.
type Effect interface {
	ID() string
	Name() string
	Icon() string
	Category() string

	// Configurable reports whether the effect takes parameters. Data is
	// nil when it does not.
	Configurable() bool
	Data() Data

	Render(src, dst *pixel.Buffer, rois []image.Rectangle)
}

// Data is the mutable parameter record of a configurable effect.
type Data interface {
	// IsDefault reports whether the parameters describe a no-op. It depends
	// only on the parameter values.
	IsDefault() bool

	// Validate returns an error wrapping ErrInvalidParameter when any value
	// is outside its declared range.
	Validate() error
}

// Preparer is implemented by effects whose output depends on the whole
// source and not just the pixels inside each ROI. Prepare derives that
// state once and returns the op to apply per ROI. A nil op means the
// derived transform is degenerate and nothing should be written.
type Preparer interface {
	Prepare(src *pixel.Buffer) pixel.Op
}

// info carries the display metadata shared by every effect.
type info struct {
	id       string
	name     string
	icon     string
	category string
}

func (i info) ID() string       { return i.id }
func (i info) Name() string     { return i.name }
func (i info) Icon() string     { return i.icon }
func (i info) Category() string { return i.category }
