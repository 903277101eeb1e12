// Package imaging is the codec boundary between image files and the
// engine's premultiplied pixel buffers.
//
// It decodes PNG, JPEG, GIF, BMP, TIFF and WebP files into pixel.Buffer
// values, encodes buffers back to disk or to base64 PNG previews, and
// reports colours in the formats tool clients expect.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// For regions, Min is inclusive and Max is exclusive, following
// image.Rectangle.
//
// # Color Representation
//
// Buffers store premultiplied alpha. Everything this package reports is
// straight (non-premultiplied) colour:
//   - Hex: "#RRGGBB" (alpha excluded)
//   - RGB / RGBA: 8-bit components
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The conversion and encoding
// functions are stateless; callers serialise access to buffers that are
// being written.
package imaging
