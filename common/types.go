// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It is in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the name of the decoder that recognised the source bytes (e.g. "png").
	Format string
}

// BytesPerRow returns the row pitch of the staged pixel data.
func (t *TextureStagingData) BytesPerRow() uint32 {
	return t.Width * 4
}

// DecodeImage decodes encoded image bytes into tightly packed RGBA pixels.
// Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
//
// Parameters:
//   - data: the encoded image file contents
//
// Returns:
//   - *TextureStagingData: the decoded pixels and dimensions
//   - error: error if the data is empty or no decoder recognises it
func DecodeImage(data []byte) (*TextureStagingData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("decoded %s image has zero size", format)
	}

	// clone.AsRGBA may return a sub-image sharing a wider stride.
	pix := rgba.Pix
	if rgba.Stride != width*4 {
		pix = make([]byte, 0, width*height*4)
		for y := 0; y < height; y++ {
			start := y * rgba.Stride
			pix = append(pix, rgba.Pix[start:start+width*4]...)
		}
	}

	return &TextureStagingData{
		Pixels: pix,
		Width:  uint32(width),
		Height: uint32(height),
		Format: format,
	}, nil
}
