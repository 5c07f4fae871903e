package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Opener is the read side of storage.Storage.
type Opener interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

type Summary struct {
	Written []string `json:"written"`
	Skipped []string `json:"skipped"`
}

// Write streams a zip of the named files to w. Names that are missing from
// storage or are not valid keys are skipped; duplicates are written once.
func Write(ctx context.Context, w io.Writer, src Opener, filenames []string) (*Summary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	summary := &Summary{}
	seen := make(map[string]bool, len(filenames))

	for _, name := range filenames {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return summary, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		if err := storage.ValidateKey(name); err != nil {
			summary.Skipped = append(summary.Skipped, name)
			continue
		}

		written, err := addFile(ctx, zw, src, name)
		if err != nil {
			_ = zw.Close()
			return summary, err
		}
		if !written {
			summary.Skipped = append(summary.Skipped, name)
			continue
		}
		summary.Written = append(summary.Written, name)
	}

	if err := zw.Close(); err != nil {
		return summary, fmt.Errorf("finalize zip: %w", err)
	}

	log.Info("archive written",
		"files", len(summary.Written),
		"skipped", len(summary.Skipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func addFile(ctx context.Context, zw *zip.Writer, src Opener, name string) (bool, error) {
	rc, err := src.Download(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("zip entry %s: %w", name, err)
	}

	if _, err := io.Copy(fw, rc); err != nil {
		return false, fmt.Errorf("zip copy %s: %w", name, err)
	}
	return true, nil
}
