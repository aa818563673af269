package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/types"
)

// ScreenSizeRequest sets the logical screen size
type ScreenSizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScreenDensityRequest sets the screen density
type ScreenDensityRequest struct {
	Density int `json:"density"`
}

// ScreenTextResponse lists recognized text in capture pixel space. When
// the session has a logical screen size, LogicalHits repeats the hits in
// that space.
type ScreenTextResponse struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Hits        []types.TextHit `json:"hits"`
	LogicalHits []types.TextHit `json:"logicalHits,omitempty"`
}

// ScreenTextCommand captures the screen and runs OCR on it
func ScreenTextCommand(ctx context.Context, s *session.Session) *CommandResponse {
	capture, err := s.Capture(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error taking screenshot: %w", err))
	}

	hits, err := s.Recognize(ctx, capture)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error recognizing text: %w", err))
	}

	logical, err := s.LogicalHits(hits)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(ScreenTextResponse{
		Width:       capture.Width,
		Height:      capture.Height,
		Hits:        hits,
		LogicalHits: logical,
	})
}

// SetScreenSizeCommand sets the logical screen size of the session
func SetScreenSizeCommand(s *session.Session, req ScreenSizeRequest) *CommandResponse {
	if err := s.SetScreenSize(req.Width, req.Height); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(s.Profile())
}

// SetScreenDensityCommand sets the screen density of the session
func SetScreenDensityCommand(s *session.Session, req ScreenDensityRequest) *CommandResponse {
	if err := s.SetScreenDensity(req.Density); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(s.Profile())
}
