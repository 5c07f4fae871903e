package resizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

type SweepStats struct {
	Expired             int `json:"expired"`
	Deleted             int `json:"deleted"`
	StorageDeleteErrors int `json:"storageErrors"`
	RecordDeleteErrors  int `json:"recordErrors"`
}

// Sweep deletes every image uploaded before cutoff, file first. Failures are
// counted and logged and do not stop the sweep; a record whose file could
// not be removed is kept so the next sweep retries it.
func (s *Service) Sweep(ctx context.Context, cutoff time.Time) (*SweepStats, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	recs, err := s.records.ListOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired images: %w", err)
	}

	stats := &SweepStats{Expired: len(recs)}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := s.blobs.Delete(ctx, rec.Filename); err != nil &&
			!errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidKey) {
			log.Warn("failed to delete file from storage", "id", rec.ID, "filename", rec.Filename, "error", err)
			stats.StorageDeleteErrors++
			metrics.RecordFileDeletion("error")
			continue
		}

		if err := s.records.Delete(ctx, rec.ID); err != nil && !errors.Is(err, catalog.ErrNotFound) {
			log.Warn("failed to delete image record", "id", rec.ID, "error", err)
			stats.RecordDeleteErrors++
			metrics.RecordFileDeletion("error")
			continue
		}

		stats.Deleted++
		metrics.RecordFileDeletion("success")
		s.emitImage(ctx, webhook.EventImageDeleted, rec)
	}

	log.Info("retention sweep completed",
		"cutoff", cutoff,
		"expired", stats.Expired,
		"deleted", stats.Deleted,
		"storage_errors", stats.StorageDeleteErrors,
		"record_errors", stats.RecordDeleteErrors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}
