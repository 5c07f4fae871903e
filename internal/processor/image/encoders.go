package image

import (
	"image"
	"io"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var (
	_ processor.Encoder = (*imagingEncoder)(nil)
	_ processor.Encoder = (*WebPEncoder)(nil)
)

type imagingEncoder struct {
	format processor.Format
	target imaging.Format
}

func (e *imagingEncoder) Format() processor.Format {
	return e.format
}

func (e *imagingEncoder) Encode(w io.Writer, img image.Image, spec processor.EncodeSpec) error {
	var opts []imaging.EncodeOption

	switch s := spec.(type) {
	case processor.LossySpec:
		opts = append(opts, imaging.JPEGQuality(s.Quality))
	case processor.PNGSpec:
		opts = append(opts, imaging.PNGCompressionLevel(s.Compression))
	}

	return imaging.Encode(w, img, e.target, opts...)
}

func NewJPEGEncoder() processor.Encoder {
	return &imagingEncoder{format: processor.FormatJPEG, target: imaging.JPEG}
}

func NewPNGEncoder() processor.Encoder {
	return &imagingEncoder{format: processor.FormatPNG, target: imaging.PNG}
}

func NewGIFEncoder() processor.Encoder {
	return &imagingEncoder{format: processor.FormatGIF, target: imaging.GIF}
}

func NewBMPEncoder() processor.Encoder {
	return &imagingEncoder{format: processor.FormatBMP, target: imaging.BMP}
}

func NewTIFFEncoder() processor.Encoder {
	return &imagingEncoder{format: processor.FormatTIFF, target: imaging.TIFF}
}

// WebPEncoder encodes lossy WebP in-process through libwebp.
type WebPEncoder struct{}

func (WebPEncoder) Format() processor.Format {
	return processor.FormatWEBP
}

func (WebPEncoder) Encode(w io.Writer, img image.Image, spec processor.EncodeSpec) error {
	quality := processor.DefaultQuality
	if s, ok := spec.(processor.LossySpec); ok {
		quality = s.Quality
	}
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}

// NewDefaultRegistry registers an encoder for every supported output format.
func NewDefaultRegistry() *processor.Registry {
	reg := processor.NewRegistry()
	reg.Register(NewJPEGEncoder())
	reg.Register(NewPNGEncoder())
	reg.Register(NewGIFEncoder())
	reg.Register(NewBMPEncoder())
	reg.Register(NewTIFFEncoder())
	reg.Register(WebPEncoder{})
	return reg
}
