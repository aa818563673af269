package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/session"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// SessionParams identifies the session a method runs against
type SessionParams struct {
	SessionID string `json:"sessionId"`
}

type DevicesParams struct {
	Scan bool `json:"scan,omitempty"`
}

type ScreenSizeParams struct {
	SessionParams
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ScreenDensityParams struct {
	SessionParams
	Density int `json:"density"`
}

// ScreenshotParams represents the parameters for the screenshot request
type ScreenshotParams struct {
	SessionParams
	Format  string `json:"format,omitempty"`  // "png" or "jpeg"
	Quality int    `json:"quality,omitempty"` // 1-100, only used for JPEG
}

type IoTapParams struct {
	SessionParams
	X int `json:"x"`
	Y int `json:"y"`
}

type IoSwipeParams struct {
	SessionParams
	X1         int `json:"x1"`
	Y1         int `json:"y1"`
	X2         int `json:"x2"`
	Y2         int `json:"y2"`
	DurationMs int `json:"durationMs"`
}

type IoClickTextParams struct {
	SessionParams
	Text string `json:"text"`
}

// methodRegistry returns a map of method names to handler functions. It
// is shared by the HTTP and WebSocket transports.
func (s *Server) methodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"devices":            s.handleDevicesList,
		"session_load":       s.handleSessionLoad,
		"session_close":      s.handleSessionClose,
		"screen_size_set":    s.handleScreenSizeSet,
		"screen_density_set": s.handleScreenDensitySet,
		"screen_text":        s.handleScreenText,
		"screenshot":         s.handleScreenshot,
		"device_info":        s.handleDeviceInfo,
		"io_tap":             s.handleIoTap,
		"io_swipe":           s.handleIoSwipe,
		"io_back":            s.handleIoBack,
		"io_click_text":      s.handleIoClickText,
		"server.shutdown":    s.handleShutdown,
	}
}

// Execute dispatches a method call using the registry
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.registry[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}

	return handler(ctx, params)
}

func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return fmt.Errorf("%w: 'params' is required with fields: %s", errInvalidParams, fields)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %v. Expected fields: %s", errInvalidParams, err, fields)
	}
	return nil
}

// commandResult turns a command response into a handler result, keeping
// the error kind.
func commandResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, &commandError{kind: response.Kind, message: response.Error}
	}
	return response.Data, nil
}

func (s *Server) withSession(id string, fn func(*session.Session) *commands.CommandResponse) (interface{}, error) {
	return s.pool.With(id, func(sess *session.Session) (interface{}, error) {
		return commandResult(fn(sess))
	})
}

func (s *Server) handleDevicesList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p DevicesParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
	}
	return commandResult(commands.DevicesCommand(ctx, s.lister, commands.DevicesRequest{Scan: p.Scan}))
}

func (s *Server) handleSessionLoad(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "host, port or serial"); err != nil {
		return nil, err
	}

	sess, err := s.loader(ctx, req)
	if err != nil {
		return nil, err
	}

	id := s.pool.Add(sess)
	return map[string]interface{}{
		"sessionId": id,
		"deviceId":  sess.ID(),
		"profile":   sess.Profile(),
	}, nil
}

func (s *Server) handleSessionClose(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}
	if !s.pool.Remove(p.SessionID) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, p.SessionID)
	}
	return okResponse, nil
}

func (s *Server) handleScreenSizeSet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ScreenSizeParams
	if err := decodeParams(params, &p, "sessionId, width, height"); err != nil {
		return nil, err
	}
	return s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.SetScreenSizeCommand(sess, commands.ScreenSizeRequest{Width: p.Width, Height: p.Height})
	})
}

func (s *Server) handleScreenDensitySet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ScreenDensityParams
	if err := decodeParams(params, &p, "sessionId, density"); err != nil {
		return nil, err
	}
	return s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.SetScreenDensityCommand(sess, commands.ScreenDensityRequest{Density: p.Density})
	})
}

func (s *Server) handleScreenText(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}
	return s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.ScreenTextCommand(ctx, sess)
	})
}

func (s *Server) handleScreenshot(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ScreenshotParams
	if err := decodeParams(params, &p, "sessionId, format, quality"); err != nil {
		return nil, err
	}

	result, err := s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.ScreenshotCommand(ctx, sess, commands.ScreenshotRequest{
			Format:     p.Format,
			Quality:    p.Quality,
			OutputPath: "-", // Always return base64 data for server
		})
	})
	if err != nil {
		return nil, err
	}

	screenshotResp, ok := result.(commands.ScreenshotResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response format")
	}

	return map[string]interface{}{
		"format": screenshotResp.Format,
		"width":  screenshotResp.Width,
		"height": screenshotResp.Height,
		"data":   fmt.Sprintf("data:image/%s;base64,%s", screenshotResp.Format, screenshotResp.Data),
	}, nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}
	return s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.DeviceInfoCommand(ctx, sess)
	})
}

func (s *Server) handleIoTap(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p IoTapParams
	if err := decodeParams(params, &p, "sessionId, x, y"); err != nil {
		return nil, err
	}
	if err := requireFields(params, "x", "y"); err != nil {
		return nil, err
	}

	_, err := s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.TapCommand(ctx, sess, commands.TapRequest{X: p.X, Y: p.Y})
	})
	if err != nil {
		return nil, err
	}
	return okResponse, nil
}

func (s *Server) handleIoSwipe(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p IoSwipeParams
	if err := decodeParams(params, &p, "sessionId, x1, y1, x2, y2, durationMs"); err != nil {
		return nil, err
	}
	if err := requireFields(params, "x1", "y1", "x2", "y2"); err != nil {
		return nil, err
	}

	_, err := s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.SwipeCommand(ctx, sess, commands.SwipeRequest{
			X1:         p.X1,
			Y1:         p.Y1,
			X2:         p.X2,
			Y2:         p.Y2,
			DurationMs: p.DurationMs,
		})
	})
	if err != nil {
		return nil, err
	}
	return okResponse, nil
}

func (s *Server) handleIoBack(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}

	_, err := s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.BackCommand(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	return okResponse, nil
}

func (s *Server) handleIoClickText(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p IoClickTextParams
	if err := decodeParams(params, &p, "sessionId, text"); err != nil {
		return nil, err
	}
	return s.withSession(p.SessionID, func(sess *session.Session) *commands.CommandResponse {
		return commands.ClickTextCommand(ctx, sess, commands.ClickTextRequest{Text: p.Text})
	})
}

func (s *Server) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	onShutdown := s.onShutdown
	s.mu.Unlock()

	if onShutdown == nil {
		return nil, fmt.Errorf("server is not running")
	}
	// respond before the listener goes away
	go onShutdown()
	return okResponse, nil
}

// requireFields rejects params where any of fields is absent, since zero
// is a valid coordinate.
func requireFields(params json.RawMessage, fields ...string) error {
	var rawParams map[string]interface{}
	if err := json.Unmarshal(params, &rawParams); err != nil {
		return fmt.Errorf("%w: invalid parameters format", errInvalidParams)
	}

	for _, field := range fields {
		if _, exists := rawParams[field]; !exists {
			return fmt.Errorf("%w: '%s' is required", errInvalidParams, field)
		}
	}
	return nil
}
