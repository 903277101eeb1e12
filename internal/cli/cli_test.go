package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-effects-mcp/internal/config"
	"github.com/ironsheep/image-effects-mcp/internal/effects"
)

// runRoot executes the command tree with args and returns stdout.
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvWorkers, "")
	t.Setenv(config.EnvHistoryLimit, "")

	root := NewRootCmd(BuildInfo{Version: "1.2.3", BuildTime: "now", GitCommit: "abc123"})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeSolidPNG writes an opaque w x h image of c to a temp file.
func writeSolidPNG(t *testing.T, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{name: "int", pairs: []string{"cell_size=8"}, want: map[string]any{"cell_size": 8}},
		{name: "negative int", pairs: []string{"brightness=-20"}, want: map[string]any{"brightness": -20}},
		{name: "float", pairs: []string{"gamma=1.5"}, want: map[string]any{"gamma": 1.5}},
		{name: "bool", pairs: []string{"linked=true"}, want: map[string]any{"linked": true}},
		{name: "string", pairs: []string{"mode=fast"}, want: map[string]any{"mode": "fast"}},
		{name: "spaces trimmed", pairs: []string{" red = 4 "}, want: map[string]any{"red": 4}},
		{name: "several", pairs: []string{"red=2", "green=3"}, want: map[string]any{"red": 2, "green": 3}},
		{name: "missing equals", pairs: []string{"red"}, wantErr: true},
		{name: "empty key", pairs: []string{"=4"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: got %#v, want %#v", k, got[k], v)
				}
			}
		})
	}
}

func TestParseROI(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{name: "plain", in: "0,0,10,20", want: image.Rect(0, 0, 10, 20)},
		{name: "spaces", in: " 1, 2 ,3, 4", want: image.Rect(1, 2, 3, 4)},
		{name: "swapped corners", in: "10,20,0,0", want: image.Rect(0, 0, 10, 20)},
		{name: "negative", in: "-5,-5,5,5", want: image.Rect(-5, -5, 5, 5)},
		{name: "too few", in: "1,2,3", wantErr: true},
		{name: "too many", in: "1,2,3,4,5", wantErr: true},
		{name: "not a number", in: "a,2,3,4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseROI(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_InvertWholeImage(t *testing.T) {
	in := writeSolidPNG(t, 8, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	out := filepath.Join(t.TempDir(), "out.png")

	stdout, err := runRoot(t, "", "apply", "-e", "invert-colors", in, out)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !strings.Contains(stdout, "Invert Colors: applied") {
		t.Errorf("unexpected summary: %q", stdout)
	}

	img := readPNG(t, out)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("output size: got %v", img.Bounds())
	}
	want := color.NRGBA{R: 55, G: 155, B: 205, A: 255}
	for _, p := range []image.Point{{0, 0}, {7, 5}, {3, 2}} {
		if got := nrgbaAt(img, p.X, p.Y); got != want {
			t.Errorf("pixel %v: got %v, want %v", p, got, want)
		}
	}
}

func TestApply_ROILimitsChange(t *testing.T) {
	orig := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	in := writeSolidPNG(t, 10, 10, orig)
	out := filepath.Join(t.TempDir(), "out.png")

	_, err := runRoot(t, "", "apply", "-e", "invert-colors", "--roi", "0,0,5,5", "--workers=2", in, out)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	img := readPNG(t, out)
	inverted := color.NRGBA{R: 245, G: 235, B: 225, A: 255}
	if got := nrgbaAt(img, 2, 2); got != inverted {
		t.Errorf("inside ROI: got %v, want %v", got, inverted)
	}
	if got := nrgbaAt(img, 7, 7); got != orig {
		t.Errorf("outside ROI: got %v, want %v", got, orig)
	}
}

func TestApply_WithParams(t *testing.T) {
	in := writeSolidPNG(t, 4, 4, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	out := filepath.Join(t.TempDir(), "out.png")

	_, err := runRoot(t, "", "apply", "-e", "brightness-contrast", "-p", "brightness=0", "-p", "contrast=0", in, out)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestApply_Errors(t *testing.T) {
	in := writeSolidPNG(t, 4, 4, color.NRGBA{A: 255})
	out := filepath.Join(t.TempDir(), "out.png")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown effect", args: []string{"apply", "-e", "blur", in, out}, wantErr: "unknown effect"},
		{name: "unknown param", args: []string{"apply", "-e", "pixelate", "-p", "radius=3", in, out}, wantErr: "invalid effect parameter"},
		{name: "params to fixed effect", args: []string{"apply", "-e", "sepia", "-p", "amount=1", in, out}, wantErr: "takes no parameters"},
		{name: "bad roi", args: []string{"apply", "-e", "sepia", "--roi", "1,2", in, out}, wantErr: "x1,y1,x2,y2"},
		{name: "missing input", args: []string{"apply", "-e", "sepia", filepath.Join(t.TempDir(), "nope.png"), out}, wantErr: "nope.png"},
		{name: "missing effect flag", args: []string{"apply", in, out}, wantErr: "effect"},
		{name: "wrong arg count", args: []string{"apply", "-e", "sepia", in}, wantErr: "accepts 2 arg(s)"},
		{name: "negative workers", args: []string{"apply", "-e", "sepia", "--workers=-1", in, out}, wantErr: "workers"},
		{name: "bad log level", args: []string{"apply", "-e", "sepia", "--log-level", "loud", in, out}, wantErr: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEffectsCmd_Table(t *testing.T) {
	stdout, err := runRoot(t, "", "effects")
	if err != nil {
		t.Fatalf("effects failed: %v", err)
	}
	for _, want := range []string{"ID", "CATEGORY", "sepia", "auto-level", "brightness-contrast", "posterize", "pixelate", "invert-colors", "cell_size="} {
		if !strings.Contains(stdout, want) {
			t.Errorf("listing missing %q:\n%s", want, stdout)
		}
	}
}

func TestEffectsCmd_JSON(t *testing.T) {
	stdout, err := runRoot(t, "", "effects", "--json")
	if err != nil {
		t.Fatalf("effects failed: %v", err)
	}
	var descs []effects.Descriptor
	if err := json.Unmarshal([]byte(stdout), &descs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(descs) != len(effects.NewRegistry().IDs()) {
		t.Errorf("got %d descriptors, want %d", len(descs), len(effects.NewRegistry().IDs()))
	}
}

func TestFormatDefaults(t *testing.T) {
	if got := formatDefaults(nil); got != "-" {
		t.Errorf("nil: got %q", got)
	}
	got := formatDefaults(map[string]any{"red": 16.0, "blue": 4.0})
	if got != "blue=4 red=16" {
		t.Errorf("got %q", got)
	}
}

func TestVersion(t *testing.T) {
	stdout, err := runRoot(t, "", "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"image-effects-mcp 1.2.3", "Build time: now", "Git commit: abc123"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output missing %q:\n%s", want, stdout)
		}
	}
}

func TestServe_Stdio(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n") + "\n"

	for _, args := range [][]string{{"serve"}, {}} {
		stdout, err := runRoot(t, input, args...)
		if err != nil {
			t.Fatalf("serve %v failed: %v", args, err)
		}
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 2 {
			t.Fatalf("serve %v: got %d responses, want 2:\n%s", args, len(lines), stdout)
		}
		if !strings.Contains(lines[0], `"version":"1.2.3"`) {
			t.Errorf("initialize response missing version: %s", lines[0])
		}
	}
}
