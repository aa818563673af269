package ocr

import (
	"context"
	"image"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Level selects the granularity engines report detections at.
type Level string

const (
	LevelLine Level = "line"
	LevelWord Level = "word"
)

// ParseLevel accepts "line" or "word", case-insensitively. Empty means line.
func ParseLevel(s string) (Level, bool) {
	switch Level(lower(s)) {
	case "", LevelLine:
		return LevelLine, true
	case LevelWord:
		return LevelWord, true
	}
	return "", false
}

// Input is a single image submitted for recognition.
type Input struct {
	// Image is the encoded payload in Format.
	Image  []byte
	Format ImageFormat
	// DPI is a scaling hint; zero means unknown.
	DPI       int
	Languages []string
	Level     Level
	// Metadata passes engine-specific variables through unchanged.
	Metadata map[string]string
}

// Detection is one text region as an engine reports it. Engines fill in
// whichever geometry they produce: a center point, a polygon (for example
// the four corners of a rotated quadrilateral) or an axis-aligned box.
type Detection struct {
	Text       string
	Center     *image.Point
	Polygon    []image.Point
	Box        image.Rectangle
	Confidence float64
}

// Engine is an OCR provider. Detections are returned in the engine's own
// order.
type Engine interface {
	Name() string
	Detect(ctx context.Context, input Input) ([]Detection, error)
}
