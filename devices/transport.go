package devices

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/mobile-next/adbocr/types"
)

// Address locates a device. A zero Port means Host is an adb serial
// (typically a USB device) rather than a TCP endpoint.
type Address struct {
	Host string `json:"host"`
	Port int    `json:"port,omitempty"`
}

// IsNetwork reports whether the device is reached over TCP.
func (a Address) IsNetwork() bool {
	return a.Port != 0
}

// Serial returns the identifier adb uses with -s.
func (a Address) Serial() string {
	if !a.IsNetwork() {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

func (a Address) String() string {
	return a.Serial()
}

// Transport establishes device connections.
type Transport interface {
	Connect(ctx context.Context, addr Address) (Device, error)
}

// Device is one connected device. Every method is a single bounded
// round-trip; none of them retry.
type Device interface {
	ID() string
	State(ctx context.Context) (string, error)

	CaptureScreen(ctx context.Context) ([]byte, error)
	Tap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error
	Back(ctx context.Context) error

	ScreenSize(ctx context.Context) (types.Size, error)
	ScreenDensity(ctx context.Context) (int, error)

	Close() error
}

// DeviceInfo represents the JSON-friendly device information
type DeviceInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
	Type  string `json:"type"`
}

// transportError makes sure err carries types.ErrTransport exactly once.
func transportError(err error) error {
	if err == nil || errors.Is(err, types.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrTransport, err)
}
