package metrics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/Ashivkar123/Image-Resizer/internal/storage"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/images", "/api/images"},
		{"/api/images/42", "/api/images/:id"},
		{"/api/images/42/edit", "/api/images/:id/edit"},
		{"/api/download/resized-1700000000000-abc.png", "/api/download/resized-1700000000000-abc.png"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRecordQualitySearch(t *testing.T) {
	before := counterValue(t, QualitySearchTotal.WithLabelValues("best_effort"))
	RecordQualitySearch(false, 10)
	after := counterValue(t, QualitySearchTotal.WithLabelValues("best_effort"))

	if after-before != 1 {
		t.Errorf("best_effort counter moved by %v, want 1", after-before)
	}
}

func TestInstrumentedStorage(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentedStorage(storage.NewMemoryStorage())

	uploadsBefore := counterValue(t, StorageOperationsTotal.WithLabelValues("upload", "success"))
	missBefore := counterValue(t, StorageOperationsTotal.WithLabelValues("download", "error"))

	data := []byte("payload")
	if err := s.Upload(ctx, "a.png", bytes.NewReader(data), "image/png", int64(len(data))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	rc, err := s.Download(ctx, "a.png")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, data) {
		t.Errorf("Download() = %q, want %q", got, data)
	}

	if _, err := s.Download(ctx, "missing.png"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download(missing) error = %v, want ErrNotFound", err)
	}

	if d := counterValue(t, StorageOperationsTotal.WithLabelValues("upload", "success")) - uploadsBefore; d != 1 {
		t.Errorf("upload success counter moved by %v, want 1", d)
	}
	if d := counterValue(t, StorageOperationsTotal.WithLabelValues("download", "error")) - missBefore; d != 1 {
		t.Errorf("download error counter moved by %v, want 1", d)
	}
}
