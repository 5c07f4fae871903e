package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoded is an in-memory raster owned by whichever pipeline stage holds it.
// Width and Height are always positive.
type Decoded struct {
	Image    *image.NRGBA
	Width    int
	Height   int
	Format   processor.Format
	HasAlpha bool
}

func newDecoded(img *image.NRGBA, format processor.Format) *Decoded {
	b := img.Bounds()
	return &Decoded{
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		HasAlpha: !img.Opaque(),
	}
}

// Decode reads a complete image. It never returns a partial image: any
// failure is reported as processor.ErrDecode.
func Decode(r io.Reader) (*Decoded, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrDecode, err)
	}

	format, err := processor.ParseFormat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: source format %q", processor.ErrDecode, name)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", processor.ErrDecode)
	}

	return newDecoded(imaging.Clone(img), format), nil
}

func DecodeBytes(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", processor.ErrDecode)
	}
	return Decode(bytes.NewReader(data))
}

// Probe returns dimensions and format without decoding pixel data.
func Probe(data []byte) (width, height int, format processor.Format, err error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", processor.ErrDecode, err)
	}
	format, err = processor.ParseFormat(name)
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: source format %q", processor.ErrDecode, name)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Codec encodes decoded images through a format registry.
type Codec struct {
	registry *processor.Registry
}

func NewCodec(reg *processor.Registry) *Codec {
	if reg == nil {
		reg = NewDefaultRegistry()
	}
	return &Codec{registry: reg}
}

func (c *Codec) Formats() []processor.Format {
	return c.registry.List()
}

// Encode writes img using spec. Encoding is a pure function of its inputs;
// for PNG the output is byte-identical across calls.
func (c *Codec) Encode(img *Decoded, spec processor.EncodeSpec) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: missing encode spec", processor.ErrInvalidConfig)
	}

	enc, err := c.registry.GetOrError(spec.Format())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img.Image, spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", processor.ErrEncode, spec.Format(), err)
	}
	return buf.Bytes(), nil
}

// EncodeArtifact performs a single direct encode.
func (c *Codec) EncodeArtifact(img *Decoded, spec processor.EncodeSpec) (*Artifact, error) {
	data, err := c.Encode(img, spec)
	if err != nil {
		return nil, err
	}
	return newArtifact(data, img, spec), nil
}
