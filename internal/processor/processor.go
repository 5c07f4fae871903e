package processor

import (
	"errors"
	"fmt"
	"image/png"
	"strings"
)

var (
	ErrDecode            = errors.New("processor: cannot decode image")
	ErrInvalidCrop       = errors.New("processor: crop rectangle out of bounds")
	ErrUnsupportedFormat = errors.New("processor: unsupported output format")
	ErrEncode            = errors.New("processor: encoding failed")
	ErrInvalidConfig     = errors.New("processor: invalid configuration")
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWEBP Format = "webp"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var Formats = []Format{FormatPNG, FormatJPEG, FormatWEBP, FormatGIF, FormatBMP, FormatTIFF}

// ParseFormat normalises a user supplied format name. "jpg" maps to jpeg and
// "tif" to tiff.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWEBP, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Lossy reports whether the format has a continuous quality knob.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWEBP
}

func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func (f Format) String() string {
	return string(f)
}

const (
	DefaultQuality = 90
	MinQuality     = 1
	MaxQuality     = 100
)

// EncodeSpec describes how an image is encoded. The concrete types are
// LossySpec, PNGSpec and PlainSpec, one per format family.
type EncodeSpec interface {
	Format() Format
	encodeSpec()
}

// LossySpec encodes JPEG or WEBP at a quality in [1,100].
type LossySpec struct {
	Target  Format
	Quality int
}

func (s LossySpec) Format() Format { return s.Target }
func (LossySpec) encodeSpec()      {}

// WithQuality returns a copy of s at quality q.
func (s LossySpec) WithQuality(q int) LossySpec {
	s.Quality = q
	return s
}

// PNGSpec encodes PNG. Compression trades encode time for size only.
type PNGSpec struct {
	Compression png.CompressionLevel
}

func (PNGSpec) Format() Format { return FormatPNG }
func (PNGSpec) encodeSpec()    {}

// PlainSpec encodes a format without tunables (GIF, BMP, TIFF).
type PlainSpec struct {
	Target Format
}

func (s PlainSpec) Format() Format { return s.Target }
func (PlainSpec) encodeSpec()      {}

func NewLossySpec(f Format, quality int) (LossySpec, error) {
	if !f.Lossy() {
		return LossySpec{}, fmt.Errorf("%w: %s has no quality setting", ErrInvalidConfig, f)
	}
	return LossySpec{Target: f, Quality: ClampQuality(quality)}, nil
}

// NewEncodeSpec picks the variant for f. quality is used only for lossy
// formats; PNG uses best compression.
func NewEncodeSpec(f Format, quality int) (EncodeSpec, error) {
	switch f {
	case FormatJPEG, FormatWEBP:
		return NewLossySpec(f, quality)
	case FormatPNG:
		return PNGSpec{Compression: png.BestCompression}, nil
	case FormatGIF, FormatBMP, FormatTIFF:
		return PlainSpec{Target: f}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ClampQuality maps non-positive values to DefaultQuality and caps at 100.
func ClampQuality(q int) int {
	if q < MinQuality {
		return DefaultQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}
