package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/session"
)

// TapRequest represents the parameters for a tap command, in logical
// coordinates
type TapRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	X1         int `json:"x1"`
	Y1         int `json:"y1"`
	X2         int `json:"x2"`
	Y2         int `json:"y2"`
	DurationMs int `json:"durationMs"`
}

// ClickTextRequest represents the parameters for tapping recognized text
type ClickTextRequest struct {
	Text string `json:"text"`
}

// TapCommand performs a tap operation on the session's device
func TapCommand(ctx context.Context, s *session.Session, req TapRequest) *CommandResponse {
	if err := s.Click(ctx, req.X, req.Y); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to tap on device %s: %w", s.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Tapped on device %s at (%d,%d)", s.ID(), req.X, req.Y),
	})
}

// SwipeCommand performs a swipe operation on the session's device
func SwipeCommand(ctx context.Context, s *session.Session, req SwipeRequest) *CommandResponse {
	if err := s.Swipe(ctx, req.X1, req.Y1, req.X2, req.Y2, req.DurationMs); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe on device %s: %w", s.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Swiped on device %s from (%d,%d) to (%d,%d) in %dms", s.ID(), req.X1, req.Y1, req.X2, req.Y2, req.DurationMs),
	})
}

// BackCommand presses the back button
func BackCommand(ctx context.Context, s *session.Session) *CommandResponse {
	if err := s.GoBack(ctx); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to press back on device %s: %w", s.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Pressed back on device %s", s.ID()),
	})
}

// ClickTextCommand taps the first recognized text containing req.Text
func ClickTextCommand(ctx context.Context, s *session.Session, req ClickTextRequest) *CommandResponse {
	hit, err := s.ClickText(ctx, req.Text)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to click text on device %s: %w", s.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Tapped '%s' on device %s at (%d,%d)", hit.Text, s.ID(), hit.X, hit.Y),
		"hit":     hit,
	})
}

// EnsureCapture takes a screenshot when none exists yet, so that one-shot
// commands can convert coordinates.
func EnsureCapture(ctx context.Context, s *session.Session) error {
	if s.HasCapture() {
		return nil
	}
	_, err := s.Capture(ctx)
	return err
}
