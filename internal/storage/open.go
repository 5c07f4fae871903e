package storage

import (
	"context"
	"fmt"
)

const (
	BackendLocal = "local"
	BackendMinIO = "minio"
)

// Open builds the configured backend. Local storage lives under dir; MinIO
// uses cfg and creates the bucket if it is missing.
func Open(ctx context.Context, backend, dir string, cfg *Config) (Storage, error) {
	switch backend {
	case "", BackendLocal:
		return NewLocalStorage(dir)
	case BackendMinIO:
		s, err := NewMinIOStorage(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
