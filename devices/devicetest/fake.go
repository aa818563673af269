// Package devicetest provides in-memory devices for tests.
package devicetest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

// PNG returns an encoded white image of the given size.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	data, err := utils.EncodeImage(img, "png", 0)
	if err != nil {
		panic(err)
	}
	return data
}

// Transport hands out registered devices by serial.
type Transport struct {
	mu       sync.Mutex
	devices  map[string]*Device
	connects []devices.Address
}

func NewTransport(list ...*Device) *Transport {
	t := &Transport{devices: map[string]*Device{}}
	for _, d := range list {
		t.Add(d)
	}
	return t
}

func (t *Transport) Add(d *Device) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devices[d.Serial] = d
}

func (t *Transport) Connect(ctx context.Context, addr devices.Address) (devices.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connects = append(t.connects, addr)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConnection, err)
	}

	d, ok := t.devices[addr.Serial()]
	if !ok {
		return nil, fmt.Errorf("%w: no device at %s", types.ErrConnection, addr)
	}
	if d.ConnectErr != nil {
		return nil, d.ConnectErr
	}
	return d, nil
}

// Connects returns every address Connect was called with.
func (t *Transport) Connects() []devices.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]devices.Address(nil), t.connects...)
}

// Device records every command it receives.
type Device struct {
	Serial string

	// Screenshot is returned by CaptureScreen.
	Screenshot []byte
	Size       types.Size
	Density    int
	// Status is what State reports; "device" means online.
	Status string

	ConnectErr error
	CaptureErr error
	InputErr   error

	mu       sync.Mutex
	commands []types.PointerCommand
	captures int
	closes   int
}

// NewDevice returns an online device whose screenshots are width x height.
func NewDevice(serial string, width, height int) *Device {
	return &Device{
		Serial:     serial,
		Screenshot: PNG(width, height),
		Size:       types.Size{Width: width, Height: height},
		Density:    420,
		Status:     "device",
	}
}

func (d *Device) ID() string {
	return d.Serial
}

func (d *Device) State(ctx context.Context) (string, error) {
	return d.Status, nil
}

func (d *Device) CaptureScreen(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.captures++
	if d.CaptureErr != nil {
		return nil, d.CaptureErr
	}
	return d.Screenshot, nil
}

func (d *Device) Tap(ctx context.Context, x, y int) error {
	return d.record(types.Tap{X: x, Y: y})
}

func (d *Device) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	return d.record(types.Swipe{X1: x1, Y1: y1, X2: x2, Y2: y2, DurationMs: durationMs})
}

func (d *Device) Back(ctx context.Context) error {
	return d.record(types.Back{})
}

func (d *Device) ScreenSize(ctx context.Context) (types.Size, error) {
	return d.Size, nil
}

func (d *Device) ScreenDensity(ctx context.Context) (int, error) {
	return d.Density, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

func (d *Device) record(cmd types.PointerCommand) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.InputErr != nil {
		return d.InputErr
	}
	d.commands = append(d.commands, cmd)
	return nil
}

// Commands returns the pointer commands received so far.
func (d *Device) Commands() []types.PointerCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.PointerCommand(nil), d.commands...)
}

// Captures returns how many screenshots were requested.
func (d *Device) Captures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captures
}

func (d *Device) Closed() bool {
	return d.CloseCount() > 0
}

// CloseCount returns how many times Close was called.
func (d *Device) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}
