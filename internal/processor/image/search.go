package image

import (
	"context"
	"fmt"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
)

const (
	SearchMinQuality    = 10
	SearchMaxQuality    = 100
	MaxSearchIterations = 10
	DefaultTolerance    = 0.05
)

// SizeTarget asks for an encoded size of KB kibibytes, accepted when the
// result lies within KB*(1±Tolerance).
type SizeTarget struct {
	KB        float64
	Tolerance float64
}

func (t SizeTarget) bounds() (float64, float64) {
	tol := t.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return t.KB * (1 - tol), t.KB * (1 + tol)
}

// SearchOutcome records how a size-constrained encode ended. Applicable is
// false for formats without a quality setting and Iterations is then 0.
// Converged false with Applicable true is not an error: the artifact is
// still the best attempt.
type SearchOutcome struct {
	TargetKB   float64 `json:"targetKB"`
	Applicable bool    `json:"applicable"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
	Quality    int     `json:"quality,omitempty"`
}

// Artifact is one encoded output image.
type Artifact struct {
	Data    []byte
	Width   int
	Height  int
	Format  processor.Format
	Quality int
	Search  *SearchOutcome
}

func newArtifact(data []byte, img *Decoded, spec processor.EncodeSpec) *Artifact {
	a := &Artifact{
		Data:   data,
		Width:  img.Width,
		Height: img.Height,
		Format: spec.Format(),
	}
	if s, ok := spec.(processor.LossySpec); ok {
		a.Quality = s.Quality
	}
	return a
}

func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

func (a *Artifact) SizeKB() float64 {
	return float64(len(a.Data)) / 1024
}

// Search encodes img so its size approaches target. Lossy formats are
// binary searched over quality in [10,100], starting from the requested quality,
// for at most MaxSearchIterations encodes, and the last attempt is
// returned whether or not it converged. Other formats are encoded once and
// marked not applicable.
func (c *Codec) Search(ctx context.Context, img *Decoded, spec processor.EncodeSpec, target SizeTarget) (*Artifact, error) {
	if target.KB <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive", processor.ErrInvalidConfig)
	}

	lossy, ok := spec.(processor.LossySpec)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		art, err := c.EncodeArtifact(img, spec)
		if err != nil {
			return nil, err
		}
		art.Search = &SearchOutcome{TargetKB: target.KB}
		return art, nil
	}

	minKB, maxKB := target.bounds()
	low, high := SearchMinQuality, SearchMaxQuality
	quality := clampSearchQuality(lossy.Quality)

	outcome := &SearchOutcome{TargetKB: target.KB, Applicable: true}
	var data []byte

	for outcome.Iterations < MaxSearchIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		encoded, err := c.Encode(img, lossy.WithQuality(quality))
		if err != nil {
			return nil, err
		}
		data = encoded
		outcome.Iterations++
		outcome.Quality = quality

		sizeKB := float64(len(data)) / 1024
		if sizeKB >= minKB && sizeKB <= maxKB {
			outcome.Converged = true
			break
		}

		if sizeKB > target.KB {
			high = quality - 1
		} else {
			low = quality + 1
		}
		// Crossed bounds keep encoding at their midpoint; the last encode is
		// the one returned.
		quality = min(max((low+high)/2, SearchMinQuality), SearchMaxQuality)
	}

	art := newArtifact(data, img, lossy.WithQuality(outcome.Quality))
	art.Search = outcome
	return art, nil
}

func clampSearchQuality(q int) int {
	if q <= 0 {
		return processor.DefaultQuality
	}
	if q < SearchMinQuality {
		return SearchMinQuality
	}
	if q > SearchMaxQuality {
		return SearchMaxQuality
	}
	return q
}
