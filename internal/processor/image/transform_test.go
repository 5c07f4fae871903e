package image

import (
	"errors"
	stdimage "image"
	"image/color"
	"testing"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// TestTargetDimensions tests resize target resolution.
func TestTargetDimensions(t *testing.T) {
	tests := []struct {
		name                 string
		srcW, srcH           int
		width, height        int
		lock                 bool
		wantWidth, wantHeight int
	}{
		{name: "locked derives height", srcW: 800, srcH: 600, width: 400, lock: true, wantWidth: 400, wantHeight: 300},
		{name: "locked ignores requested height", srcW: 800, srcH: 600, width: 400, height: 999, lock: true, wantWidth: 400, wantHeight: 300},
		{name: "locked rounds", srcW: 1000, srcH: 333, width: 500, lock: true, wantWidth: 500, wantHeight: 167},
		{name: "locked from height only", srcW: 800, srcH: 600, height: 300, lock: true, wantWidth: 400, wantHeight: 300},
		{name: "unlocked exact", srcW: 800, srcH: 600, width: 200, height: 100, wantWidth: 200, wantHeight: 100},
		{name: "unlocked derives width", srcW: 800, srcH: 600, height: 300, wantWidth: 400, wantHeight: 300},
		{name: "unlocked derives height", srcW: 800, srcH: 600, width: 200, wantWidth: 200, wantHeight: 150},
		{name: "both zero keeps source", srcW: 800, srcH: 600, wantWidth: 800, wantHeight: 600},
		{name: "derived never below one", srcW: 3000, srcH: 1, width: 10, lock: true, wantWidth: 10, wantHeight: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetDimensions(tt.srcW, tt.srcH, tt.width, tt.height, tt.lock)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("TargetDimensions() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestApply_Resize(t *testing.T) {
	src := mustDecode(createTestImage(800, 600), processor.FormatJPEG)

	out, err := Apply(src, TransformSpec{Width: 400, Height: 50, LockAspect: true})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if out.Width != 400 || out.Height != 300 {
		t.Errorf("dimensions = %dx%d, want 400x300", out.Width, out.Height)
	}
	if out.Format != processor.FormatJPEG {
		t.Errorf("Format = %q, want source format", out.Format)
	}
}

// TestApply_ResizeCoversTarget tests that a change of aspect ratio crops
// the centered overflow instead of stretching.
func TestApply_ResizeCoversTarget(t *testing.T) {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			c := blue
			if x < 10 || x >= 30 {
				c = red
			}
			img.SetNRGBA(x, y, c)
		}
	}
	src := mustDecode(img, processor.FormatPNG)

	out, err := Apply(src, TransformSpec{Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if out.Width != 20 || out.Height != 20 {
		t.Fatalf("dimensions = %dx%d, want 20x20", out.Width, out.Height)
	}
	for _, x := range []int{0, 19} {
		if got := out.Image.NRGBAAt(x, 10); got != blue {
			t.Errorf("pixel(%d,10) = %v, want %v", x, got, blue)
		}
	}
}

// TestApply_Crop tests crop validation. Out of range rectangles are
// rejected, never clamped.
func TestApply_Crop(t *testing.T) {
	tests := []struct {
		name       string
		rect       Rect
		wantErr    bool
		wantWidth  int
		wantHeight int
	}{
		{name: "inner", rect: Rect{Left: 10, Top: 5, Width: 20, Height: 10}, wantWidth: 20, wantHeight: 10},
		{name: "full image", rect: Rect{Width: 40, Height: 20}, wantWidth: 40, wantHeight: 20},
		{name: "touches far edge", rect: Rect{Left: 30, Top: 10, Width: 10, Height: 10}, wantWidth: 10, wantHeight: 10},
		{name: "exceeds width", rect: Rect{Left: 31, Width: 10, Height: 10}, wantErr: true},
		{name: "exceeds height", rect: Rect{Top: 11, Width: 10, Height: 10}, wantErr: true},
		{name: "negative left", rect: Rect{Left: -1, Width: 10, Height: 10}, wantErr: true},
		{name: "negative top", rect: Rect{Top: -1, Width: 10, Height: 10}, wantErr: true},
		{name: "zero width", rect: Rect{Height: 10}, wantErr: true},
		{name: "zero height", rect: Rect{Width: 10}, wantErr: true},
	}

	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rect := tt.rect
			out, err := Apply(src, TransformSpec{Crop: &rect})
			if tt.wantErr {
				if !errors.Is(err, processor.ErrInvalidCrop) {
					t.Errorf("Apply() error = %v, want ErrInvalidCrop", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if out.Width != tt.wantWidth || out.Height != tt.wantHeight {
				t.Errorf("dimensions = %dx%d, want %dx%d", out.Width, out.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestApply_CropSelectsRegion(t *testing.T) {
	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	out, err := Apply(src, TransformSpec{Crop: &Rect{Left: 20, Top: 10, Width: 20, Height: 10}})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if got := out.Image.NRGBAAt(0, 0); got != white {
		t.Errorf("pixel(0,0) = %v, want bottom-right quadrant %v", got, white)
	}
}

// TestApply_Orientation checks corner pixels of a quadrant image after
// rotation and flips.
func TestApply_Orientation(t *testing.T) {
	tests := []struct {
		name       string
		spec       TransformSpec
		wantWidth  int
		wantHeight int
		wantCorner color.NRGBA
	}{
		{name: "identity", spec: TransformSpec{}, wantWidth: 40, wantHeight: 20, wantCorner: red},
		{name: "rotate 90 clockwise", spec: TransformSpec{Rotate: 90}, wantWidth: 20, wantHeight: 40, wantCorner: blue},
		{name: "rotate 180", spec: TransformSpec{Rotate: 180}, wantWidth: 40, wantHeight: 20, wantCorner: white},
		{name: "rotate 270", spec: TransformSpec{Rotate: 270}, wantWidth: 20, wantHeight: 40, wantCorner: green},
		{name: "rotate -90", spec: TransformSpec{Rotate: -90}, wantWidth: 20, wantHeight: 40, wantCorner: green},
		{name: "rotate 450", spec: TransformSpec{Rotate: 450}, wantWidth: 20, wantHeight: 40, wantCorner: blue},
		{name: "rotate 360", spec: TransformSpec{Rotate: 360}, wantWidth: 40, wantHeight: 20, wantCorner: red},
		{name: "flip horizontal", spec: TransformSpec{FlipH: true}, wantWidth: 40, wantHeight: 20, wantCorner: green},
		{name: "flip vertical", spec: TransformSpec{FlipV: true}, wantWidth: 40, wantHeight: 20, wantCorner: blue},
		{name: "flip both", spec: TransformSpec{FlipH: true, FlipV: true}, wantWidth: 40, wantHeight: 20, wantCorner: white},
		{name: "rotate then flip", spec: TransformSpec{Rotate: 90, FlipH: true}, wantWidth: 20, wantHeight: 40, wantCorner: red},
	}

	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(src, tt.spec)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if out.Width != tt.wantWidth || out.Height != tt.wantHeight {
				t.Errorf("dimensions = %dx%d, want %dx%d", out.Width, out.Height, tt.wantWidth, tt.wantHeight)
			}
			if got := out.Image.NRGBAAt(0, 0); got != tt.wantCorner {
				t.Errorf("pixel(0,0) = %v, want %v", got, tt.wantCorner)
			}
		})
	}
}

func TestApply_ArbitraryAngleExpandsCanvas(t *testing.T) {
	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	out, err := Apply(src, TransformSpec{Rotate: 45})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if out.Width <= 40 || out.Height <= 20 {
		t.Errorf("dimensions = %dx%d, want larger than 40x20", out.Width, out.Height)
	}
	if !out.HasAlpha {
		t.Error("HasAlpha = false, want transparent corners")
	}
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	out, err := Apply(src, TransformSpec{FlipH: true, FlipV: true})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if got := src.Image.NRGBAAt(0, 0); got != red {
		t.Errorf("source pixel(0,0) = %v after Apply, want %v", got, red)
	}

	same, err := Apply(src, TransformSpec{})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if same.Image == src.Image {
		t.Error("identity Apply returned the source buffer")
	}
	if out.Image == src.Image {
		t.Error("Apply returned the source buffer")
	}
}

func TestTransformSpec_IsIdentity(t *testing.T) {
	if !(TransformSpec{}).IsIdentity() {
		t.Error("zero spec should be identity")
	}
	if !(TransformSpec{Rotate: 720}).IsIdentity() {
		t.Error("full turns should be identity")
	}
	if (TransformSpec{FlipV: true}).IsIdentity() {
		t.Error("flip should not be identity")
	}
}

func TestApply_IdentityCopiesSource(t *testing.T) {
	src := mustDecode(createQuadrantImage(40, 20), processor.FormatPNG)

	out, err := Apply(src, TransformSpec{Rotate: 360, LockAspect: true})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if out.Image == src.Image {
		t.Fatal("identity Apply returned the source buffer")
	}
	if out.Width != 40 || out.Height != 20 || out.Format != processor.FormatPNG {
		t.Errorf("Apply() = %dx%d %s, want 40x20 png", out.Width, out.Height, out.Format)
	}
	for _, pt := range [][2]int{{0, 0}, {39, 0}, {0, 19}, {39, 19}} {
		if got, want := out.Image.NRGBAAt(pt[0], pt[1]), src.Image.NRGBAAt(pt[0], pt[1]); got != want {
			t.Errorf("pixel%v = %v, want %v", pt, got, want)
		}
	}
}

func TestFillCrop(t *testing.T) {
	tests := []struct {
		name             string
		srcW, srcH, w, h int
		want             *Rect
	}{
		{"wide source to square", 800, 600, 300, 300, &Rect{Left: 100, Top: 0, Width: 600, Height: 600}},
		{"tall source to square", 600, 800, 300, 300, &Rect{Left: 0, Top: 100, Width: 600, Height: 600}},
		{"same aspect", 1200, 630, 1200, 630, &Rect{Left: 0, Top: 0, Width: 1200, Height: 630}},
		{"square to landscape", 1000, 1000, 1200, 600, &Rect{Left: 0, Top: 250, Width: 1000, Height: 500}},
		{"missing height", 800, 600, 300, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillCrop(tt.srcW, tt.srcH, tt.w, tt.h)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("FillCrop() = %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("FillCrop() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
