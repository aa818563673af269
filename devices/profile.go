package devices

import (
	"fmt"
	"math"

	"github.com/mobile-next/adbocr/types"
)

// DeviceProfile is the caller-facing configuration of one device. Zero
// width, height or density mean "not configured".
type DeviceProfile struct {
	Host          string `json:"host"`
	Port          int    `json:"port,omitempty"`
	Serial        string `json:"serial"`
	LogicalWidth  int    `json:"logicalWidth,omitempty"`
	LogicalHeight int    `json:"logicalHeight,omitempty"`
	Density       int    `json:"density,omitempty"`
}

// LogicalSize returns the configured logical size, empty when unset.
func (p DeviceProfile) LogicalSize() types.Size {
	return types.Size{Width: p.LogicalWidth, Height: p.LogicalHeight}
}

// NativeSizer reports the pixel size of the most recent capture.
type NativeSizer interface {
	LastSize() (types.Size, bool)
}

// DeviceSession owns a DeviceProfile and converts between logical and
// native coordinates. Native dimensions are read from the NativeSizer on
// every conversion, so a new capture with a different size (for example
// after rotation) takes effect immediately.
type DeviceSession struct {
	profile DeviceProfile
	native  NativeSizer
}

func NewDeviceSession(addr Address, serial string, native NativeSizer) *DeviceSession {
	return &DeviceSession{
		profile: DeviceProfile{
			Host:   addr.Host,
			Port:   addr.Port,
			Serial: serial,
		},
		native: native,
	}
}

// Profile returns a copy of the current profile.
func (s *DeviceSession) Profile() DeviceProfile {
	return s.profile
}

// SetScreenSize sets the logical dimensions. On failure the previous
// values are kept.
func (s *DeviceSession) SetScreenSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: screen size must be positive, got %dx%d", types.ErrInvalidConfig, width, height)
	}
	s.profile.LogicalWidth = width
	s.profile.LogicalHeight = height
	return nil
}

// SetDensity sets the nominal dpi.
func (s *DeviceSession) SetDensity(density int) error {
	if density <= 0 {
		return fmt.Errorf("%w: screen density must be positive, got %d", types.ErrInvalidConfig, density)
	}
	s.profile.Density = density
	return nil
}

// NativeSize returns the size of the last capture.
func (s *DeviceSession) NativeSize() (types.Size, error) {
	if s.native != nil {
		if size, ok := s.native.LastSize(); ok && !size.IsEmpty() {
			return size, nil
		}
	}
	return types.Size{}, fmt.Errorf("%w: take a screenshot before sending coordinates", types.ErrNoCaptureAvailable)
}

// ToNative maps logical (x, y) into capture pixel space. Without a
// logical size the mapping is the identity. The result is not bounds
// checked.
func (s *DeviceSession) ToNative(x, y int) (int, int, error) {
	native, err := s.NativeSize()
	if err != nil {
		return 0, 0, err
	}

	logical := s.profile.LogicalSize()
	if logical.IsEmpty() {
		return x, y, nil
	}

	return scale(x, native.Width, logical.Width), scale(y, native.Height, logical.Height), nil
}

// ToLogical is the inverse of ToNative.
func (s *DeviceSession) ToLogical(x, y int) (int, int, error) {
	native, err := s.NativeSize()
	if err != nil {
		return 0, 0, err
	}

	logical := s.profile.LogicalSize()
	if logical.IsEmpty() {
		return x, y, nil
	}

	return scale(x, logical.Width, native.Width), scale(y, logical.Height, native.Height), nil
}

// scale returns floor(v * to / from), so every pixel maps into the pixel
// containing it and negative inputs stay negative.
func scale(v, to, from int) int {
	return int(math.Floor(float64(v) * float64(to) / float64(from)))
}
