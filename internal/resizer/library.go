package resizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Ashivkar123/Image-Resizer/internal/archive"
	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

// List returns every record, newest first.
func (s *Service) List(ctx context.Context) ([]*catalog.Record, error) {
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*catalog.Record{}
	}
	return recs, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*catalog.Record, error) {
	rec, err := s.records.Find(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
	}
	return rec, err
}

// Delete removes the stored file, then the record. A file that is already
// gone does not block removal of the record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, rec.Filename); err != nil &&
		!errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidKey) {
		metrics.RecordFileDeletion("error")
		return fmt.Errorf("delete file %s: %w", rec.Filename, err)
	}

	if err := s.records.Delete(ctx, id); err != nil {
		metrics.RecordFileDeletion("error")
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: image %d", ErrNotFound, id)
		}
		return err
	}

	metrics.RecordFileDeletion("success")
	logger.FromContext(ctx).Info("image deleted", "id", id, "filename", rec.Filename)
	s.emitImage(ctx, webhook.EventImageDeleted, rec)
	return nil
}

// Open returns the stored file and its content type.
func (s *Service) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	rc, err := s.blobs.Download(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, "", err
	}
	return rc, ContentType(filename), nil
}

// ContentType guesses the MIME type of a stored file from its extension.
func ContentType(filename string) string {
	f, err := processor.ParseFormat(strings.TrimPrefix(path.Ext(filename), "."))
	if err != nil {
		return "application/octet-stream"
	}
	return f.ContentType()
}

// WriteArchive streams a zip of the named files to w, skipping any that do
// not exist. Only the base name of each entry is used.
func (s *Service) WriteArchive(ctx context.Context, w io.Writer, filenames []string) (*archive.Summary, error) {
	names := make([]string, 0, len(filenames))
	for _, n := range filenames {
		n = path.Base(strings.ReplaceAll(n, `\`, "/"))
		if n == "." || n == "/" {
			continue
		}
		names = append(names, n)
	}
	return archive.Write(ctx, w, s.blobs, names)
}
