// Package effects provides the named, optionally configurable image effects
// that the render coordinator applies to a layer.
//
// Each effect composes one or more pixel ops from the pixel package behind
// a single Render(src, dst, rois) contract. Effects are created through a
// Registry, which maps a stable identifier to a factory:
//
//	reg := effects.NewRegistry()
//	e, err := reg.New("pixelate")
//	if err != nil { ... }
//	if err := effects.Configure(e, map[string]any{"cell_size": 8}); err != nil { ... }
//	e.Render(src, dst, rois)
//
// # Built-in Effects
//
//   - sepia: desaturate followed by a warm gamma tint
//   - auto-level: histogram-driven per-channel stretch
//   - brightness-contrast: brightness in [-100, 100], contrast in [-100, 100]
//   - posterize: red, green and blue band counts in [1, 256], default 16
//   - pixelate: cell_size in [1, 100], default 2
//   - invert-colors: complement of every colour channel
//
// # Parameters
//
// Configurable effects expose their parameters through Data. Out-of-range
// values are reported by Validate as errors wrapping ErrInvalidParameter;
// rendering never validates. IsDefault reports whether the parameters are a
// no-op, which callers use to decide whether an edit belongs in history.
//
// # Degenerate Transforms
//
// Auto-level on a flat image derives an invalid level mapping. The effect
// writes nothing in that case; it is not an error.
//
// # Thread Safety
//
// Render may be called concurrently on disjoint ROIs of the same
// destination. Lookup tables are built under a lock the first time they are
// needed for a parameter set. Configuring an effect while it renders is not
// supported.
package effects
