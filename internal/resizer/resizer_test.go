package resizer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashivkar123/Image-Resizer/internal/cache"
	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	imgproc "github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

func noisyImage(w, h int) image.Image {
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x*255/w) ^ uint8(rng.Intn(64)),
				G: uint8(y*255/h) ^ uint8(rng.Intn(64)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, noisyImage(w, h)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, noisyImage(w, h), &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

type fixture struct {
	svc     *Service
	records *catalog.MemoryStore
	blobs   *storage.MemoryStorage
}

func newFixture(opts ...Option) *fixture {
	records := catalog.NewMemoryStore()
	blobs := storage.NewMemoryStorage()
	return &fixture{
		svc:     New(nil, records, blobs, opts...),
		records: records,
		blobs:   blobs,
	}
}

func (f *fixture) recordCount(t *testing.T) int {
	t.Helper()
	recs, err := f.records.List(context.Background())
	require.NoError(t, err)
	return len(recs)
}

func TestParseTargetSize(t *testing.T) {
	tests := []struct {
		in     string
		wantKB float64
		wantOK bool
	}{
		{"300", 300, true},
		{"512", 512, true},
		{"1.5MB", 1536, true},
		{"300 kb", 300, true},
		{"300KB", 300, true},
		{"2mb", 2048, true},
		{"0.5 Mb", 512, true},
		{"abc", 0, false},
		{"", 0, false},
		{"300 GB", 0, false},
		{"-5KB", 0, false},
		{".5MB", 0, false},
		{" 300", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kb, ok := ParseTargetSize(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantKB, kb, 1e-9)
		})
	}
}

func TestResizeBatch_PartialSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	uploads := []Upload{
		{Name: "one.png", MimeType: "image/png", Data: pngBytes(t, 80, 60)},
		{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hello")},
		{Name: "three.jpg", MimeType: "image/jpeg", Data: jpegBytes(t, 80, 60)},
	}

	items, err := f.svc.ResizeBatch(ctx, uploads, ResizeParams{Width: 40, LockAspect: true})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, StatusOK, items[0].Status)
	assert.Equal(t, StatusSkipped, items[1].Status)
	assert.Equal(t, "invalid_file_type", items[1].Code)
	assert.Equal(t, StatusOK, items[2].Status)

	for _, i := range []int{0, 2} {
		rec := items[i].Record
		require.NotNil(t, rec)
		assert.Equal(t, i, items[i].Index)
		assert.Equal(t, 40, rec.ResizedWidth)
		assert.Equal(t, 30, rec.ResizedHeight)
		assert.Equal(t, 80, rec.OriginalWidth)
		assert.Equal(t, 60, rec.OriginalHeight)
		assert.True(t, strings.HasPrefix(rec.Filename, storage.PrefixResized+"-"))

		ok, err := f.blobs.Exists(ctx, rec.Filename)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, "png", items[0].Record.Format)
	assert.Equal(t, "jpeg", items[2].Record.Format)
	assert.Equal(t, 2, f.recordCount(t))
}

func TestResizeBatch_DefaultDimensions(t *testing.T) {
	f := newFixture()

	items, err := f.svc.ResizeBatch(context.Background(),
		[]Upload{{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 64, 32)}},
		ResizeParams{})
	require.NoError(t, err)
	require.Equal(t, StatusOK, items[0].Status)

	assert.Equal(t, DefaultWidth, items[0].Record.ResizedWidth)
	assert.Equal(t, DefaultHeight, items[0].Record.ResizedHeight)
	assert.Equal(t, processor.DefaultQuality, f.svc.quality(0))
}

func TestResizeBatch_DefaultsPerDimension(t *testing.T) {
	f := newFixture()
	data := pngBytes(t, 800, 600)

	tests := []struct {
		name   string
		params ResizeParams
		wantW  int
		wantH  int
	}{
		{"height only", ResizeParams{Height: 300}, DefaultWidth, 300},
		{"width only", ResizeParams{Width: 200}, 200, DefaultHeight},
		{"width only locked", ResizeParams{Width: 200, LockAspect: true}, 200, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := f.svc.ResizeBatch(context.Background(),
				[]Upload{{Name: "a.png", MimeType: "image/png", Data: data}}, tt.params)
			require.NoError(t, err)
			require.Equal(t, StatusOK, items[0].Status)
			assert.Equal(t, tt.wantW, items[0].Record.ResizedWidth)
			assert.Equal(t, tt.wantH, items[0].Record.ResizedHeight)
		})
	}
}

func TestResizeBatch_DecodeFailureDoesNotAbort(t *testing.T) {
	f := newFixture()

	items, err := f.svc.ResizeBatch(context.Background(), []Upload{
		{Name: "broken.png", MimeType: "image/png", Data: []byte("not really a png")},
		{Name: "good.png", MimeType: "image/png", Data: pngBytes(t, 20, 20)},
	}, ResizeParams{Width: 10, Height: 10})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, items[0].Status)
	assert.Equal(t, "decode_error", items[0].Code)
	assert.NotEmpty(t, items[0].Message)
	assert.Equal(t, StatusOK, items[1].Status)
	assert.Equal(t, 1, f.recordCount(t))
}

func TestResizeBatch_Cancelled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := f.svc.ResizeBatch(ctx, []Upload{
		{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 20, 20)},
		{Name: "b.png", MimeType: "image/png", Data: pngBytes(t, 20, 20)},
	}, ResizeParams{})
	require.NoError(t, err)

	for _, item := range items {
		assert.Equal(t, StatusCancelled, item.Status)
		assert.Equal(t, "cancelled", item.Code)
	}
	assert.Equal(t, 0, f.recordCount(t))
	assert.Empty(t, f.blobs.Keys())
}

func TestResizeBatch_RequestErrors(t *testing.T) {
	f := newFixture()
	one := []Upload{{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 10, 10)}}

	_, err := f.svc.ResizeBatch(context.Background(), nil, ResizeParams{})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = f.svc.ResizeBatch(context.Background(), one, ResizeParams{Format: "heic"})
	assert.ErrorIs(t, err, processor.ErrUnsupportedFormat)

	_, err = f.svc.ResizeBatch(context.Background(), one, ResizeParams{Preset: "poster"})
	assert.ErrorIs(t, err, processor.ErrInvalidConfig)
}

func TestResizeBatch_TargetSize(t *testing.T) {
	t.Run("lossless target not applicable", func(t *testing.T) {
		f := newFixture()
		items, err := f.svc.ResizeBatch(context.Background(),
			[]Upload{{Name: "a.jpg", MimeType: "image/jpeg", Data: jpegBytes(t, 64, 64)}},
			ResizeParams{Width: 64, Height: 64, Format: "png", TargetSize: "5KB"})
		require.NoError(t, err)
		require.Equal(t, StatusOK, items[0].Status)

		require.NotNil(t, items[0].Search)
		assert.False(t, items[0].Search.Applicable)
		assert.Equal(t, 0, items[0].Search.Iterations)
		assert.Equal(t, 0, items[0].Record.SearchIterations)
		assert.InDelta(t, 5.0, items[0].Record.TargetKB, 1e-9)
	})

	t.Run("lossy target runs the search", func(t *testing.T) {
		f := newFixture()
		items, err := f.svc.ResizeBatch(context.Background(),
			[]Upload{{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 128, 128)}},
			ResizeParams{Width: 128, Height: 128, Format: "jpg", TargetSize: "8"})
		require.NoError(t, err)
		require.Equal(t, StatusOK, items[0].Status)

		s := items[0].Search
		require.NotNil(t, s)
		assert.True(t, s.Applicable)
		assert.GreaterOrEqual(t, s.Iterations, 1)
		assert.LessOrEqual(t, s.Iterations, imgproc.MaxSearchIterations)
		assert.GreaterOrEqual(t, items[0].Record.Quality, imgproc.SearchMinQuality)
		assert.LessOrEqual(t, items[0].Record.Quality, imgproc.SearchMaxQuality)
		assert.Equal(t, "jpg", items[0].Record.Format)
		assert.True(t, strings.HasSuffix(items[0].Record.Filename, ".jpg"))
	})

	t.Run("invalid target is ignored", func(t *testing.T) {
		f := newFixture()
		items, err := f.svc.ResizeBatch(context.Background(),
			[]Upload{{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 32, 32)}},
			ResizeParams{Width: 32, Height: 32, Format: "jpeg", TargetSize: "abc"})
		require.NoError(t, err)
		require.Equal(t, StatusOK, items[0].Status)
		assert.Nil(t, items[0].Search)
		assert.Equal(t, processor.DefaultQuality, items[0].Record.Quality)
	})
}

func TestResizeBatch_Preset(t *testing.T) {
	f := newFixture()

	items, err := f.svc.ResizeBatch(context.Background(),
		[]Upload{{Name: "wide.png", MimeType: "image/png", Data: pngBytes(t, 800, 400)}},
		ResizeParams{Preset: "thumbnail", Format: "jpeg"})
	require.NoError(t, err)
	require.Equal(t, StatusOK, items[0].Status)

	assert.Equal(t, 300, items[0].Record.ResizedWidth)
	assert.Equal(t, 300, items[0].Record.ResizedHeight)
	assert.Equal(t, 85, items[0].Record.Quality)
}

type failingStore struct {
	catalog.Store
}

func (failingStore) Save(context.Context, *catalog.Record) error {
	return errors.New("disk full")
}

func TestResizeBatch_RecordFailureRemovesBlob(t *testing.T) {
	blobs := storage.NewMemoryStorage()
	svc := New(nil, failingStore{Store: catalog.NewMemoryStore()}, blobs)

	items, err := svc.ResizeBatch(context.Background(),
		[]Upload{{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 20, 20)}},
		ResizeParams{Width: 10, Height: 10})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, items[0].Status)
	assert.Equal(t, "internal_error", items[0].Code)
	assert.Empty(t, blobs.Keys())
}

func seed(t *testing.T, f *fixture, w, h int) *catalog.Record {
	t.Helper()
	items, err := f.svc.ResizeBatch(context.Background(),
		[]Upload{{Name: "seed.png", MimeType: "image/png", Data: pngBytes(t, w, h)}},
		ResizeParams{Width: w, Height: h})
	require.NoError(t, err)
	require.Equal(t, StatusOK, items[0].Status)
	return items[0].Record
}

func TestEditExisting(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a sibling and keeps the original", func(t *testing.T) {
		f := newFixture()
		parent := seed(t, f, 80, 60)

		rec, err := f.svc.EditExisting(ctx, parent.ID, EditParams{Rotate: 90, FlipH: true, Format: "webp", Quality: 70})
		require.NoError(t, err)

		require.NotNil(t, rec.ParentID)
		assert.Equal(t, parent.ID, *rec.ParentID)
		assert.NotEqual(t, parent.ID, rec.ID)
		assert.Equal(t, 60, rec.ResizedWidth)
		assert.Equal(t, 80, rec.ResizedHeight)
		assert.Equal(t, 80, rec.OriginalWidth)
		assert.Equal(t, "webp", rec.Format)
		assert.Equal(t, 70, rec.Quality)
		assert.True(t, strings.HasPrefix(rec.Filename, storage.PrefixEdited+"-"))

		_, err = f.records.Find(ctx, parent.ID)
		require.NoError(t, err)
		ok, err := f.blobs.Exists(ctx, parent.Filename)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, f.recordCount(t))
	})

	t.Run("crop", func(t *testing.T) {
		f := newFixture()
		parent := seed(t, f, 80, 60)

		rec, err := f.svc.EditExisting(ctx, parent.ID, EditParams{Crop: &imgproc.Rect{Left: 10, Top: 10, Width: 30, Height: 20}})
		require.NoError(t, err)
		assert.Equal(t, 30, rec.ResizedWidth)
		assert.Equal(t, 20, rec.ResizedHeight)
		assert.Equal(t, "png", rec.Format)
	})

	t.Run("missing record", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.EditExisting(ctx, 42, EditParams{Rotate: 90})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture()
		parent := seed(t, f, 20, 20)
		require.NoError(t, f.blobs.Delete(ctx, parent.Filename))

		_, err := f.svc.EditExisting(ctx, parent.ID, EditParams{FlipV: true})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid crop writes nothing", func(t *testing.T) {
		f := newFixture()
		parent := seed(t, f, 40, 40)

		_, err := f.svc.EditExisting(ctx, parent.ID, EditParams{Crop: &imgproc.Rect{Left: 30, Top: 0, Width: 20, Height: 10}})
		assert.ErrorIs(t, err, processor.ErrInvalidCrop)
		assert.Equal(t, 1, f.recordCount(t))
		assert.Len(t, f.blobs.Keys(), 1)
	})
}

type countingCache struct {
	cache.Cache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, value, ttl)
}

func TestPreview(t *testing.T) {
	cc := &countingCache{Cache: cache.NewMemoryCache()}
	f := newFixture(WithCache(cc, time.Minute))
	data := pngBytes(t, 80, 60)
	ctx := context.Background()

	p, err := f.svc.Preview(ctx, data, PreviewParams{Width: 40, LockAspect: true, Format: "jpeg"})
	require.NoError(t, err)
	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 30, p.Height)
	assert.Equal(t, "jpeg", p.Format)
	assert.GreaterOrEqual(t, p.SizeKB, 0)

	again, err := f.svc.Preview(ctx, data, PreviewParams{Width: 40, LockAspect: true, Format: "jpeg"})
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, 1, cc.sets, "second preview should be served from cache")

	same, err := f.svc.Preview(ctx, data, PreviewParams{})
	require.NoError(t, err)
	assert.Equal(t, 80, same.Width)
	assert.Equal(t, 60, same.Height)
	assert.Equal(t, "png", same.Format)

	assert.Equal(t, 0, f.recordCount(t))
	assert.Empty(t, f.blobs.Keys())

	_, err = f.svc.Preview(ctx, []byte("garbage"), PreviewParams{})
	assert.ErrorIs(t, err, processor.ErrDecode)
}

func TestPreview_MissingDimensionKeepsSource(t *testing.T) {
	f := newFixture()
	data := pngBytes(t, 800, 600)
	ctx := context.Background()

	p, err := f.svc.Preview(ctx, data, PreviewParams{Width: 400})
	require.NoError(t, err)
	assert.Equal(t, 400, p.Width)
	assert.Equal(t, 600, p.Height)

	p, err = f.svc.Preview(ctx, data, PreviewParams{Height: 300})
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)
	assert.Equal(t, 300, p.Height)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes file and record", func(t *testing.T) {
		f := newFixture()
		rec := seed(t, f, 20, 20)

		require.NoError(t, f.svc.Delete(ctx, rec.ID))
		_, err := f.svc.Get(ctx, rec.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, f.blobs.Keys())
	})

	t.Run("missing file still removes record", func(t *testing.T) {
		f := newFixture()
		rec := seed(t, f, 20, 20)
		require.NoError(t, f.blobs.Delete(ctx, rec.Filename))

		require.NoError(t, f.svc.Delete(ctx, rec.ID))
		assert.Equal(t, 0, f.recordCount(t))
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.Delete(ctx, 7), ErrNotFound)
	})
}

func TestListAndOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	empty, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := seed(t, f, 20, 20)
	second := seed(t, f, 20, 20)

	recs, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, second.ID, recs[0].ID)
	assert.Equal(t, first.ID, recs[1].ID)

	rc, contentType, err := f.svc.Open(ctx, first.Filename)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", contentType)

	_, _, err = f.svc.Open(ctx, "resized-0-missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.svc.Open(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteArchive(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rec := seed(t, f, 20, 20)

	var buf bytes.Buffer
	summary, err := f.svc.WriteArchive(ctx, &buf, []string{"nested/dir/" + rec.Filename, "missing.png", rec.Filename})
	require.NoError(t, err)
	assert.Equal(t, []string{rec.Filename}, summary.Written)
	assert.Equal(t, []string{"missing.png"}, summary.Skipped)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, rec.Filename, zr.File[0].Name)

	r, err := zr.File[0].Open()
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	want, err := storage.ReadAll(ctx, f.blobs, rec.Filename)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("edited-1-abc.jpg"))
	assert.Equal(t, "image/webp", ContentType("x.webp"))
	assert.Equal(t, "application/octet-stream", ContentType("x.txt"))
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	t.Run("fit keeps aspect", func(t *testing.T) {
		f := newFixture()
		rec := seed(t, f, 80, 60)

		art, err := f.svc.Render(ctx, rec.ID, RenderParams{Width: 40, Format: "jpeg"})
		require.NoError(t, err)
		assert.Equal(t, 40, art.Width)
		assert.Equal(t, 30, art.Height)
		assert.Equal(t, processor.FormatJPEG, art.Format)
		assert.Equal(t, 1, f.recordCount(t), "render must not persist")
	})

	t.Run("fill crops to exact size", func(t *testing.T) {
		f := newFixture()
		rec := seed(t, f, 80, 60)

		art, err := f.svc.Render(ctx, rec.ID, RenderParams{Width: 30, Height: 30, Fill: true})
		require.NoError(t, err)
		assert.Equal(t, 30, art.Width)
		assert.Equal(t, 30, art.Height)
	})

	t.Run("served from cache", func(t *testing.T) {
		cc := &countingCache{Cache: cache.NewMemoryCache()}
		f := newFixture(WithCache(cc, time.Minute))
		rec := seed(t, f, 80, 60)
		p := RenderParams{Width: 20, Rotate: 90}

		first, err := f.svc.Render(ctx, rec.ID, p)
		require.NoError(t, err)
		second, err := f.svc.Render(ctx, rec.ID, p)
		require.NoError(t, err)

		assert.Equal(t, 1, cc.sets)
		assert.Equal(t, first.Data, second.Data)
		assert.Equal(t, first.Width, second.Width)
		assert.Equal(t, first.Height, second.Height)
	})

	t.Run("missing image", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Render(ctx, 42, RenderParams{Width: 10})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	now := time.Now()

	put := func(name string, age time.Duration, withFile bool) *catalog.Record {
		rec := &catalog.Record{OriginalName: name, Filename: name, Format: "png", UploadDate: now.Add(-age)}
		require.NoError(t, f.records.Save(ctx, rec))
		if withFile {
			data := pngBytes(t, 4, 4)
			require.NoError(t, f.blobs.Upload(ctx, name, bytes.NewReader(data), "image/png", int64(len(data))))
		}
		return rec
	}

	old := put("resized-1-old.png", 40*24*time.Hour, true)
	orphan := put("resized-2-orphan.png", 35*24*time.Hour, false)
	fresh := put("resized-3-fresh.png", time.Hour, true)

	stats, err := f.svc.Sweep(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, 2, stats.Deleted)
	assert.Zero(t, stats.StorageDeleteErrors)

	for _, id := range []int64{old.ID, orphan.ID} {
		_, err := f.records.Find(ctx, id)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	}
	_, err = f.records.Find(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.Filename}, f.blobs.Keys())
}

type recordingNotifier struct {
	events []*webhook.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev *webhook.Event) {
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) types() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	f := newFixture(WithNotifier(n))

	items, err := f.svc.ResizeBatch(ctx, []Upload{
		{Name: "one.png", MimeType: "image/png", Data: pngBytes(t, 40, 30)},
		{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hi")},
	}, ResizeParams{Width: 20, LockAspect: true})
	require.NoError(t, err)
	rec := items[0].Record

	assert.Equal(t, []string{webhook.EventImageResized, webhook.EventBatchCompleted}, n.types())

	var batch webhook.BatchCompletedData
	require.NoError(t, json.Unmarshal(n.events[1].Data, &batch))
	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Skipped)
	assert.NotEmpty(t, batch.BatchID)

	edited, err := f.svc.EditExisting(ctx, rec.ID, EditParams{FlipV: true})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, edited.ID))

	assert.Equal(t, []string{
		webhook.EventImageResized,
		webhook.EventBatchCompleted,
		webhook.EventImageEdited,
		webhook.EventImageDeleted,
	}, n.types())

	var img webhook.ImageData
	require.NoError(t, json.Unmarshal(n.events[3].Data, &img))
	assert.Equal(t, edited.ID, img.ImageID)
	require.NotNil(t, img.ParentID)
	assert.Equal(t, rec.ID, *img.ParentID)
}

func TestNotifications_FailedEditIsSilent(t *testing.T) {
	n := &recordingNotifier{}
	f := newFixture(WithNotifier(n))

	_, err := f.svc.EditExisting(context.Background(), 99, EditParams{Rotate: 90})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, n.events)
}
