package processor

import (
	"fmt"
	"image"
	"io"
	"sort"
	"sync"
)

// Encoder writes an image in one output format.
type Encoder interface {
	Encode(w io.Writer, img image.Image, spec EncodeSpec) error
	Format() Format
}

type Registry struct {
	encoders map[Format]Encoder
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[Format]Encoder),
	}
}

func (r *Registry) Register(enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[enc.Format()] = enc
}

func (r *Registry) Get(f Format) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, ok := r.encoders[f]
	return enc, ok
}

func (r *Registry) List() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.encoders))
	for f := range r.encoders {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// GetOrError returns the encoder for f, or ErrUnsupportedFormat.
func (r *Registry) GetOrError(f Format) (Encoder, error) {
	enc, exists := r.Get(f)
	if !exists {
		return nil, fmt.Errorf("%w: no encoder for %q", ErrUnsupportedFormat, f)
	}
	return enc, nil
}
