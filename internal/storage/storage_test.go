package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

// runContract exercises the behavior every Storage implementation shares.
func runContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("upload then download", func(t *testing.T) {
		key := NewKey(PrefixResized, "png")
		content := "\x89PNG\r\n\x1a\nbinary"

		if err := s.Upload(ctx, key, strings.NewReader(content), "image/png", int64(len(content))); err != nil {
			t.Fatalf("Upload() error: %v", err)
		}

		data, err := ReadAll(ctx, s, key)
		if err != nil {
			t.Fatalf("ReadAll() error: %v", err)
		}
		if string(data) != content {
			t.Errorf("content = %q, want %q", data, content)
		}

		exists, err := s.Exists(ctx, key)
		if err != nil || !exists {
			t.Errorf("Exists() = %v, %v; want true, nil", exists, err)
		}
	})

	t.Run("download missing", func(t *testing.T) {
		_, err := s.Download(ctx, "resized-1-missing.jpg")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Download() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		key := NewKey(PrefixEdited, "jpg")
		_ = s.Upload(ctx, key, strings.NewReader("x"), "image/jpeg", 1)

		if err := s.Delete(ctx, key); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if err := s.Delete(ctx, key); err != nil {
			t.Errorf("second Delete() error = %v, want nil", err)
		}
		if exists, _ := s.Exists(ctx, key); exists {
			t.Error("Exists() = true after Delete")
		}
	})

	t.Run("rejects traversal keys", func(t *testing.T) {
		for _, key := range []string{"", "../etc/passwd", "a/b.png", `a\b.png`, ".."} {
			err := s.Upload(ctx, key, strings.NewReader("x"), "text/plain", 1)
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Upload(%q) error = %v, want ErrInvalidKey", key, err)
			}
		}
	})

	t.Run("health", func(t *testing.T) {
		if err := s.HealthCheck(ctx); err != nil {
			t.Errorf("HealthCheck() error: %v", err)
		}
	})
}

func TestMemoryStorage_Contract(t *testing.T) {
	runContract(t, NewMemoryStorage())
}

func TestLocalStorage_Contract(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error: %v", err)
	}
	runContract(t, s)
}

// TestMinIOStorage_Contract runs against a live server when
// MINIO_TEST_ENDPOINT is set.
func TestMinIOStorage_Contract(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set, skipping integration test")
	}

	s, err := NewMinIOStorage(&Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "resizer-test",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinIOStorage() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.EnsureBucket(ctx); err != nil {
		t.Skip("Could not create bucket, skipping integration test")
	}

	runContract(t, s)
}

func TestLocalStorage_WritesIntoDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage() error: %v", err)
	}

	key := "resized-1700000000000-abc.png"
	if err := s.Upload(context.Background(), key, strings.NewReader("png"), "image/png", 3); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("file content = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the committed file", len(entries))
	}
}

func TestLocalStorage_ContextCanceled(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Upload(ctx, "a.png", strings.NewReader("x"), "image/png", 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Upload() error = %v, want context.Canceled", err)
	}
	if _, err := s.Download(ctx, "a.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("Download() error = %v, want context.Canceled", err)
	}
}

// TestMemoryStorage_Upload_ContextCanceled tests context cancellation.
func TestMemoryStorage_Upload_ContextCanceled(t *testing.T) {
	storage := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := storage.Upload(ctx, "file.txt", strings.NewReader("content"), "text/plain", 7)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Upload() error = %v, want context.Canceled", err)
	}
}

func TestNewKey(t *testing.T) {
	orig := now
	now = func() time.Time { return time.UnixMilli(1700000000123) }
	defer func() { now = orig }()

	pattern := regexp.MustCompile(`^resized-1700000000123-[0-9a-f]{12}\.webp$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key := NewKey(PrefixResized, ".webp")
		if !pattern.MatchString(key) {
			t.Fatalf("NewKey() = %q, does not match %s", key, pattern)
		}
		if seen[key] {
			t.Fatalf("NewKey() repeated %q within one millisecond", key)
		}
		seen[key] = true
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) error: %v", key, err)
		}
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{key: "edited-1-abc.jpg"},
		{key: "photo.final.png"},
		{key: "", wantErr: true},
		{key: ".", wantErr: true},
		{key: "..", wantErr: true},
		{key: "../x.png", wantErr: true},
		{key: "dir/x.png", wantErr: true},
		{key: `dir\x.png`, wantErr: true},
		{key: "x..png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr != (err != nil) {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

// TestMemoryStorage_Concurrent tests concurrent access safety.
func TestMemoryStorage_Concurrent(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a'+n%26)) + ".png"
			content := strings.Repeat("x", n)
			_ = storage.Upload(ctx, key, strings.NewReader(content), "image/png", int64(len(content)))
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a'+n%26)) + ".png"
			_, _ = storage.Exists(ctx, key)
			if r, err := storage.Download(ctx, key); err == nil {
				_, _ = io.Copy(io.Discard, r)
				_ = r.Close()
			}
		}(i)
	}

	wg.Wait()

	if storage.Count() == 0 {
		t.Error("Expected some files to be stored")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendLocal, filepath.Join(t.TempDir(), "out"), nil)
	if err != nil {
		t.Fatalf("Open(local) error: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("Open(local) = %T, want *LocalStorage", s)
	}

	if _, err := Open(ctx, "ftp", t.TempDir(), nil); err == nil {
		t.Error("Open(ftp) should fail")
	}
	if _, err := Open(ctx, BackendMinIO, "", nil); err == nil {
		t.Error("Open(minio) without config should fail")
	}
}

func TestNewMinIOStorage_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil", nil, true},
		{"no bucket", &Config{Endpoint: "localhost:9000"}, true},
		{"no endpoint", &Config{Bucket: "images"}, true},
		{"complete", &Config{Endpoint: "localhost:9000", Bucket: "images", AccessKey: "k", SecretKey: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIOStorage(tt.cfg)
			if tt.wantErr != (err != nil) {
				t.Errorf("NewMinIOStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := isNotFound(tt.err); got != tt.want {
			t.Errorf("%s: isNotFound() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
