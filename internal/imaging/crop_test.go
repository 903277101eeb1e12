package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

func decodeResult(t *testing.T, result *CropResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func hexAt(img image.Image, x, y int) string {
	return NewColorResult(img.At(x, y)).Hex
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, image.Rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if got := hexAt(decodeResult(t, result), 25, 25); got != "#FF0000" {
		t.Errorf("cropped color: got %s, want #FF0000", got)
	}
}

func TestCrop_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		rect         image.Rectangle
		scale        float64
		wantW, wantH int
	}{
		{"up", image.Rect(0, 0, 50, 50), 2.0, 100, 100},
		{"down", image.Rect(0, 0, 100, 100), 0.5, 50, 50},
		{"zero keeps size", image.Rect(0, 0, 30, 20), 0, 30, 20},
		{"tiny never collapses", image.Rect(0, 0, 4, 4), 0.01, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.rect, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_Errors(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name  string
		rect  image.Rectangle
		scale float64
	}{
		{"negative origin", image.Rect(-10, 0, 50, 50), 1},
		{"past right edge", image.Rect(0, 0, 150, 50), 1},
		{"past bottom edge", image.Rect(0, 0, 50, 150), 1},
		{"negative scale", image.Rect(0, 0, 10, 10), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.rect, tt.scale); err == nil {
				t.Error("Crop should fail")
			}
		})
	}
}

func TestCrop_EmptyRectIsFullImage(t *testing.T) {
	buf := pixel.NewBuffer(12, 8)
	buf.Fill(pixel.White)

	result, err := Crop(buf, image.Rectangle{}, 1)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 12 || result.Height != 8 {
		t.Errorf("got %dx%d, want 12x8", result.Width, result.Height)
	}
}

func TestNamedRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	tests := []struct {
		region string
		want   image.Rectangle
	}{
		{"", bounds},
		{"full", bounds},
		{"top-left", image.Rect(0, 0, 50, 50)},
		{"top-right", image.Rect(50, 0, 100, 50)},
		{"bottom-left", image.Rect(0, 50, 50, 100)},
		{"bottom-right", image.Rect(50, 50, 100, 100)},
		{"top-half", image.Rect(0, 0, 100, 50)},
		{"bottom-half", image.Rect(0, 50, 100, 100)},
		{"left-half", image.Rect(0, 0, 50, 100)},
		{"right-half", image.Rect(50, 0, 100, 100)},
		{"center", image.Rect(25, 25, 75, 75)},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			got, err := NamedRegion(bounds, tt.region)
			if err != nil {
				t.Fatalf("NamedRegion failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	for _, bad := range []string{"invalid", "TOP-LEFT", "center-left"} {
		if _, err := NamedRegion(bounds, bad); err == nil {
			t.Errorf("NamedRegion(%q) should fail", bad)
		}
	}
}

func TestNamedRegion_OddDimensions(t *testing.T) {
	got, err := NamedRegion(image.Rect(0, 0, 101, 101), "top-left")
	if err != nil {
		t.Fatal(err)
	}
	// 101/2 = 50 (integer division)
	if got != image.Rect(0, 0, 50, 50) {
		t.Errorf("got %v, want (0,0)-(50,50)", got)
	}
}

func TestSave(t *testing.T) {
	buf := pixel.NewBuffer(8, 6)
	buf.Fill(pixel.ColorBgra{B: 64, G: 128, R: 255, A: 255})
	buf.SetPixel(0, 0, pixel.ColorBgra{R: 128, A: 128})

	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "out.png")
	if err := cache.Save(buf, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := cache.LoadBuffer(path)
	if err != nil {
		t.Fatalf("LoadBuffer failed: %v", err)
	}
	if !back.Equal(buf) {
		t.Error("PNG round trip changed pixels")
	}

	if err := cache.Save(buf, filepath.Join(t.TempDir(), "out.unknown")); err == nil {
		t.Error("Save should fail for an unknown extension")
	}
}

func TestSave_EvictsCachedPath(t *testing.T) {
	cache := NewImageCache()
	path := createTestImageFile(t, 4, 4, color.White)
	if _, err := cache.Load(path); err != nil {
		t.Fatal(err)
	}

	buf := pixel.NewBuffer(4, 4)
	buf.Fill(pixel.Black)
	if err := cache.Save(buf, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := cache.LoadBuffer(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.GetPixel(1, 1) != pixel.Black {
		t.Error("Load returned the stale cached image after Save")
	}
}

func TestEncodePNG(t *testing.T) {
	encoded, err := EncodePNG(createInMemoryImage(3, 2, color.Black))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img := decodeResult(t, &CropResult{ImageBase64: encoded})
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds: got %v", img.Bounds())
	}
}
