package resizer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Ashivkar123/Image-Resizer/internal/cache"
	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/tracing"
)

// RenderParams describe an on-the-fly rendition of a stored image.
type RenderParams struct {
	Width   int
	Height  int
	Fill    bool
	Rotate  float64
	FlipH   bool
	FlipV   bool
	Quality int
	Format  string
}

func (p RenderParams) cacheParams(id int64) string {
	return fmt.Sprintf("%d|%d|%d|%t|%s|%t|%t|%d|%s", id, p.Width, p.Height, p.Fill,
		strconv.FormatFloat(p.Rotate, 'f', -1, 64), p.FlipH, p.FlipV, p.Quality, p.Format)
}

// Render transforms the stored image id without persisting anything. The
// aspect ratio is kept unless Fill is set, in which case the image is
// center-cropped to exactly Width x Height. Renditions are cached by their
// parameters.
func (s *Service) Render(ctx context.Context, id int64, p RenderParams) (_ *image.Artifact, err error) {
	ctx, span := tracing.StartFlowSpan(ctx, "render", attribute.Int64("image.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	rec, err := s.records.Find(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
		}
		return nil, err
	}

	p.Quality = s.quality(p.Quality)
	recFormat, err := processor.ParseFormat(rec.Format)
	if err != nil {
		return nil, err
	}
	format, _, err := outputFormat(p.Format, recFormat)
	if err != nil {
		return nil, err
	}

	key := cache.Key("render", []byte(rec.Filename), p.cacheParams(id))
	if data, ok, cerr := s.cache.Get(ctx, key); cerr == nil && ok {
		if w, h, _, perr := image.Probe(data); perr == nil {
			metrics.RecordPreviewCache(true)
			return &image.Artifact{Data: data, Width: w, Height: h, Format: format}, nil
		}
	}
	metrics.RecordPreviewCache(false)

	data, err := storage.ReadAll(ctx, s.blobs, rec.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: file for image %d", ErrNotFound, id)
		}
		return nil, err
	}

	start := time.Now()
	src, err := image.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	spec := image.TransformSpec{
		Width:      p.Width,
		Height:     p.Height,
		LockAspect: !p.Fill && p.Width > 0,
		Rotate:     p.Rotate,
		FlipH:      p.FlipH,
		FlipV:      p.FlipV,
	}
	if p.Fill {
		spec.Crop = image.FillCrop(src.Width, src.Height, p.Width, p.Height)
	}

	out, err := image.Apply(src, spec)
	if err != nil {
		return nil, err
	}
	encSpec, err := processor.NewEncodeSpec(format, p.Quality)
	if err != nil {
		return nil, err
	}
	art, err := s.codec.EncodeArtifact(out, encSpec)
	if err != nil {
		return nil, err
	}
	metrics.RecordImageProcessed("render", string(StatusOK), time.Since(start).Seconds())

	if cerr := s.cache.Set(ctx, key, art.Data, s.cacheTTL); cerr != nil {
		logger.FromContext(ctx).Warn("render cache write failed", "error", cerr)
	}
	return art, nil
}
