package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

const DefaultJpegQuality = 90

// EncodeImage encodes img as "png" or "jpeg". Quality only applies to jpeg
// and falls back to DefaultJpegQuality when outside 1-100.
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch strings.ToLower(format) {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "jpeg", "jpg":
		if quality < 1 || quality > 100 {
			quality = DefaultJpegQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format '%s'", format)
	}

	return buf.Bytes(), nil
}

// DecodeImage decodes a png or jpeg payload and returns the detected format.
func DecodeImage(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}
