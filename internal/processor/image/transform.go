package image

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/disintegration/imaging"
)

type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TransformSpec is applied in a fixed order: crop, resize, rotate, flip
// horizontal, flip vertical. Zero values skip a step.
type TransformSpec struct {
	Crop       *Rect
	Width      int
	Height     int
	LockAspect bool
	// Rotate is in degrees clockwise.
	Rotate float64
	FlipH  bool
	FlipV  bool
}

// IsIdentity reports whether Apply would return an unchanged copy.
func (s TransformSpec) IsIdentity() bool {
	return s.Crop == nil && s.Width == 0 && s.Height == 0 &&
		normalizeDegrees(s.Rotate) == 0 && !s.FlipH && !s.FlipV
}

// Apply runs the pipeline and returns a new image. src is not modified.
func Apply(src *Decoded, spec TransformSpec) (*Decoded, error) {
	if spec.IsIdentity() {
		return newDecoded(imaging.Clone(src.Image), src.Format), nil
	}

	img := src.Image

	if spec.Crop != nil {
		cropped, err := crop(img, *spec.Crop)
		if err != nil {
			return nil, err
		}
		img = cropped
	}

	b := img.Bounds()
	w, h := TargetDimensions(b.Dx(), b.Dy(), spec.Width, spec.Height, spec.LockAspect)
	// Exact dimensions cover the target and trim the centered overflow.
	if w != b.Dx() || h != b.Dy() {
		img = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	}

	img = rotate(img, spec.Rotate)

	if spec.FlipH {
		img = imaging.FlipH(img)
	}
	if spec.FlipV {
		img = imaging.FlipV(img)
	}

	if img == src.Image {
		img = imaging.Clone(img)
	}

	return newDecoded(img, src.Format), nil
}

// TargetDimensions resolves the resize target against the source size. With
// lockAspect the height is always round(width * srcH / srcW) and the
// requested height is ignored. A zero dimension is derived from the other;
// both zero keeps the source size.
func TargetDimensions(srcW, srcH, width, height int, lockAspect bool) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return width, height
	}
	if width <= 0 && height <= 0 {
		return srcW, srcH
	}

	switch {
	case lockAspect && width > 0:
		height = scaleDimension(width, srcH, srcW)
	case width <= 0:
		width = scaleDimension(height, srcW, srcH)
	case height <= 0:
		height = scaleDimension(width, srcH, srcW)
	}

	return width, height
}

func scaleDimension(known, num, den int) int {
	v := int(math.Round(float64(known) * float64(num) / float64(den)))
	if v < 1 {
		return 1
	}
	return v
}

func crop(img *image.NRGBA, r Rect) (*image.NRGBA, error) {
	b := img.Bounds()
	if r.Width <= 0 || r.Height <= 0 || r.Left < 0 || r.Top < 0 ||
		r.Left+r.Width > b.Dx() || r.Top+r.Height > b.Dy() {
		return nil, fmt.Errorf("%w: %dx%d+%d+%d outside %dx%d",
			processor.ErrInvalidCrop, r.Width, r.Height, r.Left, r.Top, b.Dx(), b.Dy())
	}

	origin := b.Min.Add(image.Pt(r.Left, r.Top))
	return imaging.Crop(img, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(r.Width, r.Height))}), nil
}

func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// imaging rotates counter-clockwise, so clockwise angles are negated.
// Right angles use the exact rotations; anything else grows the canvas to
// fit and fills the corners with transparency.
func rotate(img *image.NRGBA, deg float64) *image.NRGBA {
	switch d := normalizeDegrees(deg); d {
	case 0:
		return img
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return imaging.Rotate(img, -d, color.Transparent)
	}
}

// FillCrop returns the largest centered rectangle of src with the aspect
// ratio width:height, for cover-style resizing. It returns nil when either
// target dimension is unset.
func FillCrop(srcW, srcH, width, height int) *Rect {
	if width <= 0 || height <= 0 || srcW <= 0 || srcH <= 0 {
		return nil
	}

	cw, ch := srcW, scaleDimension(srcW, height, width)
	if ch > srcH {
		cw, ch = scaleDimension(srcH, width, height), srcH
	}
	if cw > srcW {
		cw = srcW
	}

	return &Rect{Left: (srcW - cw) / 2, Top: (srcH - ch) / 2, Width: cw, Height: ch}
}
