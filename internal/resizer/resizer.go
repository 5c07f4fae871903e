// Package resizer sequences decode, transform, encode and persistence for
// batch resizes, non-destructive edits and previews.
package resizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/cache"
	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

var (
	ErrNotFound = errors.New("resizer: image not found")
	ErrNoImages = errors.New("resizer: no images supplied")
)

const (
	DefaultWidth  = 500
	DefaultHeight = 500
)

type Service struct {
	codec          *image.Codec
	records        catalog.Store
	blobs          storage.Storage
	cache          cache.Cache
	cacheTTL       time.Duration
	defaultQuality int
	notifier       Notifier
}

// Notifier receives library events. Notify must not block.
type Notifier interface {
	Notify(ctx context.Context, event *webhook.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, *webhook.Event) {}

type Option func(*Service)

// WithCache enables preview caching for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithNotifier publishes resize, edit and delete events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDefaultQuality overrides the quality used when a request names none.
func WithDefaultQuality(q int) Option {
	return func(s *Service) {
		s.defaultQuality = processor.ClampQuality(q)
	}
}

func New(codec *image.Codec, records catalog.Store, blobs storage.Storage, opts ...Option) *Service {
	if codec == nil {
		codec = image.NewCodec(nil)
	}
	s := &Service{
		codec:          codec,
		records:        records,
		blobs:          blobs,
		cache:          cache.NopCache{},
		defaultQuality: processor.DefaultQuality,
		notifier:       nopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) quality(q int) int {
	if q <= 0 {
		return s.defaultQuality
	}
	return processor.ClampQuality(q)
}

// outputFormat resolves the requested format name against the source. The
// returned extension keeps the caller's spelling ("jpg" stays "jpg").
func outputFormat(requested string, source processor.Format) (processor.Format, string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return source, source.String(), nil
	}
	f, err := processor.ParseFormat(requested)
	if err != nil {
		return "", "", err
	}
	return f, requested, nil
}

// persist stores the artifact and its record. The blob is removed again if
// the record cannot be saved so a failure leaves nothing behind.
func (s *Service) persist(ctx context.Context, prefix, ext string, art *image.Artifact, rec *catalog.Record) error {
	key := storage.NewKey(prefix, ext)

	if err := s.blobs.Upload(ctx, key, bytes.NewReader(art.Data), art.Format.ContentType(), art.Size()); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}

	rec.Filename = key
	rec.FileSize = art.Size()
	rec.Format = ext
	rec.ResizedWidth = art.Width
	rec.ResizedHeight = art.Height
	rec.Quality = art.Quality
	if art.Search != nil {
		rec.TargetKB = art.Search.TargetKB
		rec.Converged = art.Search.Converged
		rec.SearchIterations = art.Search.Iterations
	}

	if err := s.records.Save(ctx, rec); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			logger.FromContext(ctx).Error("failed to remove orphaned blob", "key", key, "error", derr)
		}
		rec.Filename = ""
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *Service) emitImage(ctx context.Context, eventType string, rec *catalog.Record) {
	ev, err := webhook.NewImageEvent(eventType, rec)
	if err != nil {
		logger.FromContext(ctx).Error("failed to build event", "event_type", eventType, "error", err)
		return
	}
	s.notifier.Notify(ctx, ev)
}

// errorCode names an error kind for per-item reporting.
func errorCode(err error) string {
	switch {
	case errors.Is(err, processor.ErrDecode):
		return "decode_error"
	case errors.Is(err, processor.ErrInvalidCrop):
		return "invalid_crop"
	case errors.Is(err, processor.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, processor.ErrEncode):
		return "encode_error"
	case errors.Is(err, processor.ErrInvalidConfig):
		return "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal_error"
	}
}
