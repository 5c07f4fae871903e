package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
)

const maxRenderPixels = 25000000

// TransformOptions is the parsed form of a URL transform string such as
// "w_800,h_600,q_85,f_webp,c_fill,r_90,fl_h".
type TransformOptions struct {
	Width   int
	Height  int
	Quality int
	Format  string
	Crop    string
	Rotate  float64
	FlipH   bool
	FlipV   bool
}

func (t *TransformOptions) RequiresProcessing() bool {
	return t.Width > 0 || t.Height > 0 || t.Quality > 0 || t.Format != "" ||
		t.Rotate != 0 || t.FlipH || t.FlipV
}

func (t *TransformOptions) RenderParams() resizer.RenderParams {
	return resizer.RenderParams{
		Width:   t.Width,
		Height:  t.Height,
		Fill:    t.Crop == "fill",
		Rotate:  t.Rotate,
		FlipH:   t.FlipH,
		FlipV:   t.FlipV,
		Quality: t.Quality,
		Format:  t.Format,
	}
}

func ParseTransforms(s string) (*TransformOptions, error) {
	if s == "" || s == "_" || s == "original" {
		return &TransformOptions{}, nil
	}

	opts := &TransformOptions{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "_")
		if !ok {
			return nil, fmt.Errorf("invalid transform format: %s (expected key_value)", part)
		}

		switch key {
		case "w":
			w, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid width value: %s", value)
			}
			if w < 1 || w > 10000 {
				return nil, fmt.Errorf("width must be between 1 and 10000, got %d", w)
			}
			opts.Width = w

		case "h":
			h, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid height value: %s", value)
			}
			if h < 1 || h > 10000 {
				return nil, fmt.Errorf("height must be between 1 and 10000, got %d", h)
			}
			opts.Height = h

		case "q":
			q, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid quality value: %s", value)
			}
			if q < processor.MinQuality || q > processor.MaxQuality {
				return nil, fmt.Errorf("quality must be between 1 and 100, got %d", q)
			}
			opts.Quality = q

		case "f":
			value = strings.ToLower(value)
			if _, err := processor.ParseFormat(value); err != nil {
				return nil, fmt.Errorf("unsupported format: %s (supported: png, jpg, webp, gif, bmp, tiff)", value)
			}
			opts.Format = value

		case "c":
			value = strings.ToLower(value)
			switch value {
			case "fit", "fill":
				opts.Crop = value
			default:
				return nil, fmt.Errorf("unsupported crop mode: %s (supported: fit, fill)", value)
			}

		case "r":
			r, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid rotation value: %s", value)
			}
			if r <= -360 || r >= 360 {
				return nil, fmt.Errorf("rotation must be within (-360, 360), got %s", value)
			}
			opts.Rotate = r

		case "fl":
			switch strings.ToLower(value) {
			case "h":
				opts.FlipH = true
			case "v":
				opts.FlipV = true
			case "hv", "vh":
				opts.FlipH, opts.FlipV = true, true
			default:
				return nil, fmt.Errorf("unsupported flip: %s (supported: h, v, hv)", value)
			}

		default:
			return nil, fmt.Errorf("unknown transform key: %s", key)
		}
	}

	return opts, nil
}

func ValidateTransforms(opts *TransformOptions) error {
	if opts.Width > 0 && opts.Height > 0 && opts.Width*opts.Height > maxRenderPixels {
		return fmt.Errorf("output dimensions too large (max 25 megapixels)")
	}

	if opts.Crop == "fill" && (opts.Width == 0 || opts.Height == 0) {
		return fmt.Errorf("crop mode 'fill' requires both width and height")
	}

	return nil
}
