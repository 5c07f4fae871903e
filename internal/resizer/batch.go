package resizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/presets"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/tracing"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

// Upload is one file of a batch as received from the client.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// ResizeParams are the request-level knobs of a batch. Zero values mean
// "not set": width and height each default to 500, quality to the service
// default, format to the source format. A preset fills in whatever the
// request leaves unset.
type ResizeParams struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	LockAspect bool   `json:"lockAspect"`
	Format     string `json:"format,omitempty"`
	Quality    int    `json:"quality,omitempty"`
	TargetSize string `json:"targetSize,omitempty"`
	Preset     string `json:"preset,omitempty"`
}

type ItemStatus string

const (
	StatusOK        ItemStatus = "ok"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
	StatusCancelled ItemStatus = "cancelled"
)

// BatchItem reports the outcome for one upload, in input order.
type BatchItem struct {
	Index   int                  `json:"index"`
	Name    string               `json:"name"`
	Status  ItemStatus           `json:"status"`
	Code    string               `json:"code,omitempty"`
	Message string               `json:"message,omitempty"`
	Record  *catalog.Record      `json:"record,omitempty"`
	Search  *image.SearchOutcome `json:"search,omitempty"`
}

type resizePlan struct {
	width, height int
	lockAspect    bool
	fill          bool
	format        string
	quality       int
	targetKB      float64
}

func (s *Service) plan(p ResizeParams) (resizePlan, error) {
	if p.Preset != "" {
		pr, ok := presets.Get(p.Preset)
		if !ok {
			return resizePlan{}, fmt.Errorf("%w: unknown preset %q", processor.ErrInvalidConfig, p.Preset)
		}
		if p.Width == 0 && p.Height == 0 {
			p.Width, p.Height = pr.Width, pr.Height
		}
		if p.Quality == 0 {
			p.Quality = pr.Quality
		}
		if p.TargetSize == "" {
			p.TargetSize = pr.TargetSize
		}
		if pr.Fill && p.Width == pr.Width && p.Height == pr.Height {
			return s.finishPlan(p, true)
		}
	}
	return s.finishPlan(p, false)
}

func (s *Service) finishPlan(p ResizeParams, fill bool) (resizePlan, error) {
	if p.Width <= 0 {
		p.Width = DefaultWidth
	}
	if p.Height <= 0 {
		p.Height = DefaultHeight
	}
	if p.Format != "" {
		if _, err := processor.ParseFormat(p.Format); err != nil {
			return resizePlan{}, err
		}
	}

	plan := resizePlan{
		width:      p.Width,
		height:     p.Height,
		lockAspect: p.LockAspect && !fill,
		fill:       fill,
		format:     p.Format,
		quality:    s.quality(p.Quality),
	}
	if kb, ok := ParseTargetSize(p.TargetSize); ok {
		plan.targetKB = kb
	}
	return plan, nil
}

// ResizeBatch runs every upload through decode, resize, encode and persist,
// strictly in input order. Non-image uploads are skipped and a failing file
// does not stop the batch. When ctx is cancelled the remaining items are
// reported as cancelled. The returned error covers only request-level
// problems such as an empty batch or an unknown format.
func (s *Service) ResizeBatch(ctx context.Context, uploads []Upload, params ResizeParams) ([]BatchItem, error) {
	if len(uploads) == 0 {
		return nil, ErrNoImages
	}

	plan, err := s.plan(params)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithBatchID(ctx, uuid.NewString())
	ctx, span := tracing.StartFlowSpan(ctx, "resize", attribute.Int("batch.size", len(uploads)))
	defer tracing.EndSpan(span, nil)

	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("batch resize started",
		"files", len(uploads),
		"width", plan.width,
		"height", plan.height,
		"lock_aspect", plan.lockAspect,
		"target_kb", plan.targetKB,
	)

	items := make([]BatchItem, len(uploads))
	var ok, failed, skipped, cancelled int

	for i, up := range uploads {
		items[i] = BatchItem{Index: i, Name: up.Name}

		if err := ctx.Err(); err != nil {
			items[i].Status = StatusCancelled
			items[i].Code = errorCode(err)
			cancelled++
			continue
		}

		if !strings.HasPrefix(strings.ToLower(up.MimeType), "image/") {
			items[i].Status = StatusSkipped
			items[i].Code = "invalid_file_type"
			items[i].Message = fmt.Sprintf("%s is not an image", up.MimeType)
			skipped++
			log.Debug("skipping non-image upload", "index", i, "name", up.Name, "mime_type", up.MimeType)
			continue
		}

		itemStart := time.Now()
		rec, outcome, err := s.resizeOne(ctx, i, up, plan)
		if err != nil {
			items[i].Code = errorCode(err)
			items[i].Message = err.Error()
			if ctx.Err() != nil {
				items[i].Status = StatusCancelled
				cancelled++
			} else {
				items[i].Status = StatusFailed
				failed++
				log.Warn("resize failed", "index", i, "name", up.Name, "error", err)
			}
			metrics.RecordImageProcessed("resize", string(items[i].Status), time.Since(itemStart).Seconds())
			continue
		}

		items[i].Status = StatusOK
		items[i].Record = rec
		items[i].Search = outcome
		ok++
		s.emitImage(ctx, webhook.EventImageResized, rec)
		metrics.RecordImageProcessed("resize", string(StatusOK), time.Since(itemStart).Seconds())
	}

	log.Info("batch resize completed",
		"ok", ok,
		"failed", failed,
		"skipped", skipped,
		"cancelled", cancelled,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if ev, err := webhook.NewBatchCompletedEvent(webhook.BatchCompletedData{
		BatchID:    logger.BatchID(ctx),
		Total:      len(uploads),
		Succeeded:  ok,
		Failed:     failed,
		Skipped:    skipped,
		Cancelled:  cancelled,
		DurationMs: time.Since(start).Milliseconds(),
	}); err == nil {
		s.notifier.Notify(ctx, ev)
	}

	return items, nil
}

func (s *Service) resizeOne(ctx context.Context, index int, up Upload, plan resizePlan) (_ *catalog.Record, _ *image.SearchOutcome, err error) {
	ctx, span := tracing.StartItemSpan(ctx, up.Name, index)
	defer func() { tracing.EndSpan(span, err) }()

	src, err := image.DecodeBytes(up.Data)
	if err != nil {
		return nil, nil, err
	}

	spec := image.TransformSpec{Width: plan.width, Height: plan.height, LockAspect: plan.lockAspect}
	if plan.fill {
		spec.Crop = image.FillCrop(src.Width, src.Height, plan.width, plan.height)
	}

	out, err := image.Apply(src, spec)
	if err != nil {
		return nil, nil, err
	}

	format, ext, err := outputFormat(plan.format, src.Format)
	if err != nil {
		return nil, nil, err
	}
	encSpec, err := processor.NewEncodeSpec(format, plan.quality)
	if err != nil {
		return nil, nil, err
	}

	var art *image.Artifact
	if plan.targetKB > 0 {
		art, err = s.codec.Search(ctx, out, encSpec, image.SizeTarget{KB: plan.targetKB})
	} else {
		art, err = s.codec.EncodeArtifact(out, encSpec)
	}
	if err != nil {
		return nil, nil, err
	}
	if art.Search != nil && art.Search.Applicable {
		metrics.RecordQualitySearch(art.Search.Converged, art.Search.Iterations)
	}
	metrics.RecordImageOutput(format.String(), len(art.Data))

	rec := &catalog.Record{
		OriginalName:   up.Name,
		OriginalWidth:  src.Width,
		OriginalHeight: src.Height,
	}
	if err := s.persist(ctx, storage.PrefixResized, ext, art, rec); err != nil {
		return nil, nil, err
	}

	return rec, art.Search, nil
}
