package catalog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("catalog: record not found")

// Record is the metadata of one stored output image. Filename doubles as
// the blob storage key.
type Record struct {
	ID               int64     `json:"id"`
	ParentID         *int64    `json:"parentId,omitempty"`
	OriginalName     string    `json:"originalName"`
	Filename         string    `json:"filename"`
	FileSize         int64     `json:"fileSize"`
	Format           string    `json:"format"`
	OriginalWidth    int       `json:"originalWidth"`
	OriginalHeight   int       `json:"originalHeight"`
	ResizedWidth     int       `json:"resizedWidth"`
	ResizedHeight    int       `json:"resizedHeight"`
	Quality          int       `json:"quality,omitempty"`
	TargetKB         float64   `json:"targetKB,omitempty"`
	Converged        bool      `json:"converged"`
	SearchIterations int       `json:"searchIterations"`
	UploadDate       time.Time `json:"uploadDate"`
}

// Store persists records. Save assigns ID, and UploadDate when zero. List
// returns newest first.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Find(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]*Record, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}

var now = func() time.Time { return time.Now().UTC() }

func stamp(rec *Record) {
	if rec.UploadDate.IsZero() {
		rec.UploadDate = now()
	}
	rec.UploadDate = rec.UploadDate.UTC().Truncate(time.Microsecond)
}
