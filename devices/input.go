package devices

import (
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

// InputDispatcher sends pointer commands to a device after converting
// logical coordinates with a DeviceSession.
type InputDispatcher struct {
	device  Device
	session *DeviceSession
}

func NewInputDispatcher(device Device, session *DeviceSession) *InputDispatcher {
	return &InputDispatcher{device: device, session: session}
}

// Tap taps at logical (x, y).
func (d *InputDispatcher) Tap(ctx context.Context, x, y int) error {
	nx, ny, err := d.toNativeChecked(x, y)
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, types.Tap{X: nx, Y: ny})
}

// TapNative taps at (x, y) in capture pixel space.
func (d *InputDispatcher) TapNative(ctx context.Context, x, y int) error {
	native, err := d.session.NativeSize()
	if err != nil {
		return err
	}
	if !native.Contains(x, y) {
		return fmt.Errorf("%w: (%d,%d) is outside %s", types.ErrInvalidCoordinate, x, y, native)
	}
	return d.Dispatch(ctx, types.Tap{X: x, Y: y})
}

// Swipe drags between two logical points. The duration is validated
// before any coordinate.
func (d *InputDispatcher) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	if durationMs <= 0 {
		return fmt.Errorf("%w: swipe duration must be positive, got %dms", types.ErrInvalidConfig, durationMs)
	}

	nx1, ny1, err := d.toNativeChecked(x1, y1)
	if err != nil {
		return err
	}
	nx2, ny2, err := d.toNativeChecked(x2, y2)
	if err != nil {
		return err
	}

	return d.Dispatch(ctx, types.Swipe{X1: nx1, Y1: ny1, X2: nx2, Y2: ny2, DurationMs: durationMs})
}

func (d *InputDispatcher) Back(ctx context.Context) error {
	return d.Dispatch(ctx, types.Back{})
}

// Dispatch sends cmd as is. Coordinates must already be native.
func (d *InputDispatcher) Dispatch(ctx context.Context, cmd types.PointerCommand) error {
	utils.Verbose("Dispatching %s to %s", cmd, d.device.ID())

	var err error
	switch c := cmd.(type) {
	case types.Tap:
		err = d.device.Tap(ctx, c.X, c.Y)
	case types.Swipe:
		err = d.device.Swipe(ctx, c.X1, c.Y1, c.X2, c.Y2, c.DurationMs)
	case types.Back:
		err = d.device.Back(ctx)
	default:
		return fmt.Errorf("unsupported pointer command %T", cmd)
	}

	return transportError(err)
}

func (d *InputDispatcher) toNativeChecked(x, y int) (int, int, error) {
	nx, ny, err := d.session.ToNative(x, y)
	if err != nil {
		return 0, 0, err
	}

	native, err := d.session.NativeSize()
	if err != nil {
		return 0, 0, err
	}
	if !native.Contains(nx, ny) {
		return 0, 0, fmt.Errorf("%w: (%d,%d) maps to (%d,%d), outside %s", types.ErrInvalidCoordinate, x, y, nx, ny, native)
	}

	return nx, ny, nil
}
