package resizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/tracing"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

// EditParams describe an edit of a stored image. Rotate is clockwise
// degrees. There is no size target in this flow.
type EditParams struct {
	Rotate  float64     `json:"rotate"`
	FlipH   bool        `json:"flipH"`
	FlipV   bool        `json:"flipV"`
	Crop    *image.Rect `json:"crop,omitempty"`
	Quality int         `json:"quality,omitempty"`
	Format  string      `json:"format,omitempty"`
}

func (p EditParams) transform() image.TransformSpec {
	return image.TransformSpec{
		Crop:   p.Crop,
		Rotate: p.Rotate,
		FlipH:  p.FlipH,
		FlipV:  p.FlipV,
	}
}

// EditBytes applies p to an encoded image and returns the new artifact. It
// has no side effects. The returned extension is the one the output should
// be stored under.
func (s *Service) EditBytes(ctx context.Context, data []byte, p EditParams) (*image.Artifact, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	src, err := image.DecodeBytes(data)
	if err != nil {
		return nil, "", err
	}

	format, ext, err := outputFormat(p.Format, src.Format)
	if err != nil {
		return nil, "", err
	}
	spec, err := processor.NewEncodeSpec(format, s.quality(p.Quality))
	if err != nil {
		return nil, "", err
	}

	out, err := image.Apply(src, p.transform())
	if err != nil {
		return nil, "", err
	}

	art, err := s.codec.EncodeArtifact(out, spec)
	if err != nil {
		return nil, "", err
	}
	return art, ext, nil
}

// EditExisting edits the stored image id and saves the result as a new
// record whose ParentID is id. The original record and file are untouched.
func (s *Service) EditExisting(ctx context.Context, id int64, p EditParams) (_ *catalog.Record, err error) {
	ctx, span := tracing.StartFlowSpan(ctx, "edit", attribute.Int64("image.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	log := logger.FromContext(ctx)
	start := time.Now()

	parent, err := s.records.Find(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
		}
		return nil, err
	}

	data, err := storage.ReadAll(ctx, s.blobs, parent.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: file for image %d", ErrNotFound, id)
		}
		return nil, err
	}

	art, ext, err := s.EditBytes(ctx, data, p)
	if err != nil {
		metrics.RecordImageProcessed("edit", string(StatusFailed), time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordImageOutput(art.Format.String(), len(art.Data))

	rec := &catalog.Record{
		ParentID:       &parent.ID,
		OriginalName:   parent.OriginalName,
		OriginalWidth:  parent.ResizedWidth,
		OriginalHeight: parent.ResizedHeight,
	}
	if err := s.persist(ctx, storage.PrefixEdited, ext, art, rec); err != nil {
		metrics.RecordImageProcessed("edit", string(StatusFailed), time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordImageProcessed("edit", string(StatusOK), time.Since(start).Seconds())
	log.Info("image edited",
		"parent_id", parent.ID,
		"id", rec.ID,
		"filename", rec.Filename,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.emitImage(ctx, webhook.EventImageEdited, rec)
	return rec, nil
}
