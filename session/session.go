// Package session is the single entry point for driving one device:
// connect, capture, read the screen text and send input.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/ocr"
	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

const localHost = "localhost"

// Session owns one device connection and its coordinate state. It is
// meant for one caller at a time; independent Sessions share nothing.
type Session struct {
	addr       devices.Address
	device     devices.Device
	profile    *devices.DeviceSession
	capturer   *devices.Capturer
	recognizer *ocr.Recognizer
	dispatcher *devices.InputDispatcher

	closeOnce sync.Once
	closeErr  error
}

// Load connects to the device at host:port. A zero port means host is an
// adb serial. When connecting to localhost fails, local listening ports
// are scanned for an emulator unless disabled with WithScan(false).
func Load(ctx context.Context, host string, port int, opts ...Option) (*Session, error) {
	o := &options{scan: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = devices.NewAdbTransport("", 0)
	}

	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port out of range: %d", types.ErrConnection, port)
	}

	addr := devices.Address{Host: host, Port: port}
	utils.Verbose("Connecting to device %s", addr)

	device, err := o.transport.Connect(ctx, addr)
	if err != nil {
		utils.Warn("Failed to connect to device %s: %v", addr, err)
		if !o.scan || host != localHost || !addr.IsNetwork() {
			return nil, connectionError(err)
		}

		device, addr, err = scanLocal(ctx, o, port)
		if err != nil {
			utils.Warn("Failed to connect to emulator, please make sure the ADB is enabled on your emulator.")
			return nil, connectionError(err)
		}
	}

	s := newSession(addr, device, o)

	if o.width != 0 || o.height != 0 {
		if err := s.SetScreenSize(o.width, o.height); err != nil {
			device.Close()
			return nil, err
		}
	}
	if o.density != 0 {
		if err := s.SetScreenDensity(o.density); err != nil {
			device.Close()
			return nil, err
		}
	}

	utils.Info("Connected to device %s", device.ID())
	return s, nil
}

func scanLocal(ctx context.Context, o *options, failedPort int) (devices.Device, devices.Address, error) {
	scanner := o.scanner
	if scanner == nil {
		scanner = devices.NewScanner(o.transport)
	}

	utils.Info("Scanning for open adb devices at %s...", scanner.Host)
	return scanner.Scan(ctx, failedPort)
}

func newSession(addr devices.Address, device devices.Device, o *options) *Session {
	capturer := devices.NewCapturer(device)
	profile := devices.NewDeviceSession(addr, device.ID(), capturer)

	return &Session{
		addr:       addr,
		device:     device,
		profile:    profile,
		capturer:   capturer,
		recognizer: ocr.NewRecognizer(o.engine, o.ocrOpts...),
		dispatcher: devices.NewInputDispatcher(device, profile),
	}
}

func connectionError(err error) error {
	if errors.Is(err, types.ErrConnection) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrConnection, err)
}

// ID returns the adb serial of the connected device.
func (s *Session) ID() string {
	return s.device.ID()
}

// Address returns the address the session ended up connected to, which
// differs from the requested one after a local scan.
func (s *Session) Address() devices.Address {
	return s.addr
}

// Profile returns a copy of the device profile.
func (s *Session) Profile() devices.DeviceProfile {
	return s.profile.Profile()
}

func (s *Session) SetScreenSize(width, height int) error {
	return s.profile.SetScreenSize(width, height)
}

func (s *Session) SetScreenDensity(density int) error {
	return s.profile.SetDensity(density)
}

// Click taps at logical (x, y).
func (s *Session) Click(ctx context.Context, x, y int) error {
	return s.dispatcher.Tap(ctx, x, y)
}

// Swipe drags between two logical points over durationMs.
func (s *Session) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	return s.dispatcher.Swipe(ctx, x1, y1, x2, y2, durationMs)
}

func (s *Session) GoBack(ctx context.Context) error {
	return s.dispatcher.Back(ctx)
}

// Capture takes a screenshot. It also refreshes the native size used to
// convert coordinates.
func (s *Session) Capture(ctx context.Context) (*types.ScreenCapture, error) {
	return s.capturer.Capture(ctx)
}

// HasCapture reports whether a screenshot has been taken.
func (s *Session) HasCapture() bool {
	_, ok := s.capturer.LastSize()
	return ok
}

// GetScreenText captures the screen and returns the recognized text in
// capture pixel space. The result is empty, never nil, when there is no
// text.
func (s *Session) GetScreenText(ctx context.Context) ([]types.TextHit, error) {
	capture, err := s.capturer.Capture(ctx)
	if err != nil {
		return nil, err
	}
	return s.Recognize(ctx, capture)
}

// Recognize runs OCR over a capture taken earlier, using the profile
// density as the DPI hint.
func (s *Session) Recognize(ctx context.Context, capture *types.ScreenCapture) ([]types.TextHit, error) {
	var extra []ocr.InputOption
	if density := s.profile.Profile().Density; density > 0 {
		extra = append(extra, ocr.WithDPI(density))
	}
	return s.recognizer.Recognize(ctx, capture, extra...)
}

// LogicalHits maps hits from capture pixel space into the logical screen
// space set by SetScreenSize. It returns nil when no logical size is set.
func (s *Session) LogicalHits(hits []types.TextHit) ([]types.TextHit, error) {
	if s.profile.Profile().LogicalSize().IsEmpty() {
		return nil, nil
	}

	out := make([]types.TextHit, 0, len(hits))
	for _, hit := range hits {
		x, y, err := s.profile.ToLogical(hit.X, hit.Y)
		if err != nil {
			return nil, err
		}
		width, height, err := s.profile.ToLogical(hit.Width, hit.Height)
		if err != nil {
			return nil, err
		}
		hit.X, hit.Y, hit.Width, hit.Height = x, y, width, height
		out = append(out, hit)
	}
	return out, nil
}

// ClickText captures the screen and taps the first hit whose text
// contains text, ignoring case. It returns the hit that was tapped.
func (s *Session) ClickText(ctx context.Context, text string) (types.TextHit, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return types.TextHit{}, fmt.Errorf("%w: text is required", types.ErrInvalidConfig)
	}

	hits, err := s.GetScreenText(ctx)
	if err != nil {
		return types.TextHit{}, err
	}

	for _, hit := range hits {
		if strings.Contains(strings.ToLower(hit.Text), needle) {
			if err := s.dispatcher.TapNative(ctx, hit.X, hit.Y); err != nil {
				return types.TextHit{}, err
			}
			return hit, nil
		}
	}

	return types.TextHit{}, fmt.Errorf("%w: %q among %d hit(s)", types.ErrTextNotFound, text, len(hits))
}

// DeviceScreenSize asks the device for its window manager size.
func (s *Session) DeviceScreenSize(ctx context.Context) (types.Size, error) {
	size, err := s.device.ScreenSize(ctx)
	if err != nil {
		return types.Size{}, transportError(err)
	}
	return size, nil
}

// DeviceScreenDensity asks the device for its density in dpi.
func (s *Session) DeviceScreenDensity(ctx context.Context) (int, error) {
	density, err := s.device.ScreenDensity(ctx)
	if err != nil {
		return 0, transportError(err)
	}
	return density, nil
}

// IsConnected reports whether adb still sees the device online.
func (s *Session) IsConnected(ctx context.Context) bool {
	state, err := s.device.State(ctx)
	return err == nil && state == "device"
}

// Close releases the device connection. Only the first call disconnects;
// later calls return the same result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		utils.Verbose("Closing session for %s", s.device.ID())
		s.closeErr = s.device.Close()
	})
	return s.closeErr
}

func transportError(err error) error {
	if errors.Is(err, types.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrTransport, err)
}
