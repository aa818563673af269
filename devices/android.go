package devices

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

const (
	DefaultAdbPath = "adb"
	DefaultTimeout = 10 * time.Second

	keycodeBack = "4"
	stateOnline = "device"
)

// AdbTransport drives devices through the adb command line tool.
type AdbTransport struct {
	adbPath string
	timeout time.Duration
}

// NewAdbTransport returns a transport running adbPath, bounding every
// command by timeout. Empty or zero values fall back to the defaults.
func NewAdbTransport(adbPath string, timeout time.Duration) *AdbTransport {
	if adbPath == "" {
		adbPath = DefaultAdbPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AdbTransport{adbPath: adbPath, timeout: timeout}
}

// run executes adb and returns stdout and stderr combined.
func (t *AdbTransport) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	utils.Verbose("Running %s %s", t.adbPath, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, t.adbPath, args...)
	return cmd.CombinedOutput()
}

// runOutput executes adb and returns stdout only, for binary payloads.
func (t *AdbTransport) runOutput(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	utils.Verbose("Running %s %s", t.adbPath, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, t.adbPath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return output, fmt.Errorf("%v: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return output, err
	}
	return output, nil
}

// Connect attaches to the device at addr. TCP devices are connected with
// `adb connect`; serial devices must already be attached. Either way the
// device has to report the online state.
func (t *AdbTransport) Connect(ctx context.Context, addr Address) (Device, error) {
	if addr.Host == "" {
		return nil, fmt.Errorf("%w: host is required", types.ErrConnection)
	}

	if addr.IsNetwork() {
		output, err := t.run(ctx, "connect", addr.Serial())
		if err != nil {
			return nil, fmt.Errorf("%w: adb connect %s: %v: %s", types.ErrConnection, addr, err, strings.TrimSpace(string(output)))
		}
		if err := parseConnectOutput(string(output)); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrConnection, err)
		}
	}

	device := &AndroidDevice{
		serial:    addr.Serial(),
		network:   addr.IsNetwork(),
		transport: t,
	}

	state, err := device.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConnection, err)
	}
	if state != stateOnline {
		return nil, fmt.Errorf("%w: device %s is %s", types.ErrConnection, addr, state)
	}

	return device, nil
}

func parseConnectOutput(output string) error {
	for _, line := range strings.Split(output, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(line, "connected to") || strings.HasPrefix(line, "already connected to") {
			return nil
		}
	}

	msg := strings.TrimSpace(output)
	if msg == "" {
		msg = "adb connect returned no output"
	}
	return errors.New(msg)
}

// ListDevices retrieves the devices known to the adb server
func (t *AdbTransport) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	output, err := t.run(ctx, "devices")
	if err != nil {
		return nil, fmt.Errorf("failed to run 'adb devices': %v", err)
	}

	list := parseAdbDevicesOutput(string(output))
	for i := range list {
		if list[i].State == stateOnline {
			list[i].Name = t.deviceName(ctx, list[i].ID)
		}
	}

	return list, nil
}

func (t *AdbTransport) deviceName(ctx context.Context, serial string) string {
	output, err := t.run(ctx, "-s", serial, "shell", "getprop", "ro.product.model")
	if err == nil && len(strings.TrimSpace(string(output))) > 0 {
		return strings.TrimSpace(string(output))
	}
	return serial
}

func parseAdbDevicesOutput(output string) []DeviceInfo {
	list := []DeviceInfo{}

	lines := strings.Split(output, "\n")
	for i := 1; i < len(lines); i++ {
		parts := strings.Fields(strings.TrimSpace(lines[i]))
		if len(parts) != 2 {
			continue
		}

		list = append(list, DeviceInfo{
			ID:    parts[0],
			Name:  parts[0],
			State: parts[1],
			Type:  deviceType(parts[0]),
		})
	}

	return list
}

func deviceType(serial string) string {
	switch {
	case strings.HasPrefix(serial, "emulator-"):
		return "emulator"
	case strings.Contains(serial, ":"):
		return "network"
	default:
		return "real"
	}
}

// AndroidDevice is a device reachable through AdbTransport.
type AndroidDevice struct {
	serial    string
	network   bool
	transport *AdbTransport
}

func (d *AndroidDevice) ID() string {
	return d.serial
}

func (d *AndroidDevice) runAdbCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := append([]string{"-s", d.serial}, args...)
	return d.transport.run(ctx, cmdArgs...)
}

func (d *AndroidDevice) runShell(ctx context.Context, args ...string) error {
	output, err := d.runAdbCommand(ctx, append([]string{"shell"}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: %s failed on %s: %v: %s", types.ErrTransport, strings.Join(args, " "), d.serial, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// State returns the adb state, "device" when online.
func (d *AndroidDevice) State(ctx context.Context) (string, error) {
	output, err := d.runAdbCommand(ctx, "get-state")
	if err != nil {
		return "", fmt.Errorf("%w: get-state %s: %v: %s", types.ErrTransport, d.serial, err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// CaptureScreen returns the raw PNG produced by screencap. exec-out keeps
// the payload binary-safe on devices whose shell rewrites line endings.
func (d *AndroidDevice) CaptureScreen(ctx context.Context) ([]byte, error) {
	data, err := d.transport.runOutput(ctx, "-s", d.serial, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to take screenshot: %v", types.ErrTransport, err)
	}
	return data, nil
}

// Tap simulates a tap at (x, y) on the Android device.
func (d *AndroidDevice) Tap(ctx context.Context, x, y int) error {
	return d.runShell(ctx, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
}

func (d *AndroidDevice) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	return d.runShell(ctx, "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1),
		strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.Itoa(durationMs))
}

// Back sends KEYCODE_BACK.
func (d *AndroidDevice) Back(ctx context.Context) error {
	return d.runShell(ctx, "input", "keyevent", keycodeBack)
}

// ScreenSize reports the size the window manager uses, preferring the
// override size over the physical one.
func (d *AndroidDevice) ScreenSize(ctx context.Context) (types.Size, error) {
	output, err := d.runAdbCommand(ctx, "shell", "wm", "size")
	if err != nil {
		return types.Size{}, fmt.Errorf("%w: wm size: %v", types.ErrTransport, err)
	}
	return parseWmSize(string(output))
}

// ScreenDensity reports the density in dpi, preferring the override value.
func (d *AndroidDevice) ScreenDensity(ctx context.Context) (int, error) {
	output, err := d.runAdbCommand(ctx, "shell", "wm", "density")
	if err != nil {
		return 0, fmt.Errorf("%w: wm density: %v", types.ErrTransport, err)
	}
	return parseWmDensity(string(output))
}

// Close disconnects TCP devices; USB devices are left attached.
func (d *AndroidDevice) Close() error {
	if !d.network {
		return nil
	}

	output, err := d.transport.run(context.Background(), "disconnect", d.serial)
	if err != nil {
		return fmt.Errorf("failed to disconnect %s: %v: %s", d.serial, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// lastValue returns the value after "<label>:" on the last line that has
// one. `wm` prints the physical value first and any override after it.
func lastValue(output, label string) string {
	value := ""
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(strings.ToLower(line), label+":")
		if idx < 0 {
			continue
		}
		value = strings.TrimSpace(line[idx+len(label)+1:])
	}
	return value
}

func parseWmSize(output string) (types.Size, error) {
	value := lastValue(output, "size")
	w, h, ok := strings.Cut(value, "x")
	if !ok {
		return types.Size{}, fmt.Errorf("%w: unexpected wm size output: %q", types.ErrTransport, strings.TrimSpace(output))
	}

	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return types.Size{}, fmt.Errorf("%w: unexpected wm size output: %q", types.ErrTransport, strings.TrimSpace(output))
	}

	return types.Size{Width: width, Height: height}, nil
}

func parseWmDensity(output string) (int, error) {
	density, err := strconv.Atoi(lastValue(output, "density"))
	if err != nil || density <= 0 {
		return 0, fmt.Errorf("%w: unexpected wm density output: %q", types.ErrTransport, strings.TrimSpace(output))
	}
	return density, nil
}
