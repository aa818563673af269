package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/types"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	// Kind names the error category, for example "invalid_coordinate".
	Kind string `json:"kind,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
		Kind:   types.ErrorKind(err),
	}
}

// SessionRequest identifies the device to connect to and the initial
// screen profile. Serial takes precedence over Host and Port.
type SessionRequest struct {
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Density int    `json:"density,omitempty"`
}

// Target returns the host and port session.Load expects.
func (r SessionRequest) Target() (string, int, error) {
	if r.Serial != "" {
		return r.Serial, 0, nil
	}
	if r.Host == "" {
		return "", 0, fmt.Errorf("%w: host or serial is required", types.ErrInvalidConfig)
	}
	return r.Host, r.Port, nil
}

// LoadSession connects according to req. opts come first so the request's
// screen profile overrides configured defaults.
func LoadSession(ctx context.Context, req SessionRequest, opts ...session.Option) (*session.Session, error) {
	host, port, err := req.Target()
	if err != nil {
		return nil, err
	}

	opts = append([]session.Option(nil), opts...)
	if req.Width != 0 || req.Height != 0 {
		opts = append(opts, session.WithScreenSize(req.Width, req.Height))
	}
	if req.Density != 0 {
		opts = append(opts, session.WithDensity(req.Density))
	}

	return session.Load(ctx, host, port, opts...)
}
