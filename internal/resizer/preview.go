package resizer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/cache"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/tracing"
)

// PreviewParams mirror ResizeParams without persistence concerns. An unset
// width or height keeps the source width or height.
type PreviewParams struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	LockAspect bool   `json:"lockAspect"`
	Quality    int    `json:"quality,omitempty"`
	Format     string `json:"format,omitempty"`
}

type Preview struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	SizeKB int    `json:"sizeKB"`
	Format string `json:"format"`
}

// Preview encodes data as a resize would and reports the result without
// storing anything. Results are cached by input digest when a cache is
// configured.
func (s *Service) Preview(ctx context.Context, data []byte, p PreviewParams) (_ *Preview, err error) {
	ctx, span := tracing.StartFlowSpan(ctx, "preview")
	defer func() { tracing.EndSpan(span, err) }()

	log := logger.FromContext(ctx)
	p.Quality = s.quality(p.Quality)
	key := cache.Key("preview", data, fmt.Sprintf("%d|%d|%t|%d|%s", p.Width, p.Height, p.LockAspect, p.Quality, p.Format))

	if raw, ok, cerr := s.cache.Get(ctx, key); cerr != nil {
		log.Warn("preview cache lookup failed", "error", cerr)
	} else if ok {
		var cached Preview
		if json.Unmarshal(raw, &cached) == nil {
			metrics.RecordPreviewCache(true)
			return &cached, nil
		}
	}
	metrics.RecordPreviewCache(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	src, err := image.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	if p.Width <= 0 {
		p.Width = src.Width
	}
	if p.Height <= 0 {
		p.Height = src.Height
	}

	out, err := image.Apply(src, image.TransformSpec{Width: p.Width, Height: p.Height, LockAspect: p.LockAspect})
	if err != nil {
		return nil, err
	}

	format, ext, err := outputFormat(p.Format, src.Format)
	if err != nil {
		return nil, err
	}
	spec, err := processor.NewEncodeSpec(format, p.Quality)
	if err != nil {
		return nil, err
	}

	art, err := s.codec.EncodeArtifact(out, spec)
	if err != nil {
		return nil, err
	}
	metrics.RecordImageProcessed("preview", string(StatusOK), time.Since(start).Seconds())

	res := &Preview{
		Width:  art.Width,
		Height: art.Height,
		SizeKB: int(math.Round(art.SizeKB())),
		Format: ext,
	}

	if raw, merr := json.Marshal(res); merr == nil {
		if cerr := s.cache.Set(ctx, key, raw, s.cacheTTL); cerr != nil {
			log.Warn("preview cache store failed", "error", cerr)
		}
	}
	return res, nil
}
