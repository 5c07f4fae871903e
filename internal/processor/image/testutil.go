package image

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"

	"github.com/Ashivkar123/Image-Resizer/internal/processor"
)

// createTestImage creates a test image with a gradient pattern.
// The gradient makes it easy to verify transformations visually.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(255 * x / width)
			g := uint8(255 * y / height)
			img.Set(x, y, color.RGBA{R: r, G: g, B: 128, A: 255})
		}
	}

	return img
}

// createNoisyImage overlays seeded noise on the gradient so encoded sizes
// respond strongly to quality.
func createNoisyImage(width, height int, seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := rng.Intn(64)
			img.Set(x, y, color.RGBA{
				R: uint8((255*x/width + n) % 256),
				G: uint8((255*y/height + n) % 256),
				B: uint8(64 + n),
				A: 255,
			})
		}
	}

	return img
}

// createQuadrantImage paints each quadrant a distinct color: red top-left,
// green top-right, blue bottom-left, white bottom-right.
func createQuadrantImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{R: 255, A: 255}
			case y < height/2:
				c = color.NRGBA{G: 255, A: 255}
			case x < width/2:
				c = color.NRGBA{B: 255, A: 255}
			default:
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}

func encodeTestJPEG(img image.Image, quality int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	return buf.Bytes()
}

func encodeTestPNG(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func encodeTestGIF(img image.Image) []byte {
	var buf bytes.Buffer
	_ = gif.Encode(&buf, img, nil)
	return buf.Bytes()
}

// createTestJPEG creates a JPEG image of the specified size.
func createTestJPEG(width, height int) []byte {
	return encodeTestJPEG(createTestImage(width, height), 85)
}

// createTestPNG creates a PNG image of the specified size.
func createTestPNG(width, height int) []byte {
	return encodeTestPNG(createTestImage(width, height))
}

// createCorruptedJPEG returns a truncated JPEG (valid header, incomplete data).
func createCorruptedJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
}

// mustDecode round-trips img through PNG and tags the result with format.
func mustDecode(img image.Image, format processor.Format) *Decoded {
	d, err := DecodeBytes(encodeTestPNG(img))
	if err != nil {
		panic(err)
	}
	d.Format = format
	return d
}
