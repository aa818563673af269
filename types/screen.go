package types

import "image"

// ScreenCapture is a single decoded still of the device screen. It is not
// modified after the capture adapter returns it.
type ScreenCapture struct {
	Width  int
	Height int
	Image  image.Image
	// Encoded holds the payload exactly as the device returned it (PNG for
	// screencap), so OCR engines can consume it without re-encoding.
	Encoded []byte
}

// Size returns the pixel dimensions of the capture.
func (c *ScreenCapture) Size() Size {
	return Size{Width: c.Width, Height: c.Height}
}

// TextHit is one recognized text run. X and Y are the centroid of the
// detected region in capture pixel space.
type TextHit struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}
