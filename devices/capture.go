package devices

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8}
)

// Capturer takes screenshots from one device. Only the size of the last
// successful capture is kept; pixels are never cached.
type Capturer struct {
	device  Device
	last    types.Size
	hasLast bool
}

func NewCapturer(device Device) *Capturer {
	return &Capturer{device: device}
}

// Capture requests one frame and decodes it. There is no retry.
func (c *Capturer) Capture(ctx context.Context) (*types.ScreenCapture, error) {
	payload, err := c.device.CaptureScreen(ctx)
	if err != nil {
		return nil, transportError(err)
	}

	if err := checkImagePayload(payload); err != nil {
		return nil, err
	}

	img, format, err := utils.DecodeImage(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}

	bounds := img.Bounds()
	capture := &types.ScreenCapture{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Image:   img,
		Encoded: payload,
	}
	if capture.Size().IsEmpty() {
		return nil, fmt.Errorf("%w: empty %s image", types.ErrDecode, format)
	}

	c.last = capture.Size()
	c.hasLast = true
	utils.Verbose("Captured %s screenshot %s (%d bytes) from %s", format, c.last, len(payload), c.device.ID())

	return capture, nil
}

// LastSize returns the dimensions of the most recent capture.
func (c *Capturer) LastSize() (types.Size, bool) {
	return c.last, c.hasLast
}

// checkImagePayload rejects payloads that are not an image at all, such as
// an adb error message written to stdout.
func checkImagePayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: device returned an empty screenshot", types.ErrTransport)
	}
	if bytes.HasPrefix(payload, pngMagic) || bytes.HasPrefix(payload, jpegMagic) {
		return nil
	}

	preview := payload
	if len(preview) > 64 {
		preview = preview[:64]
	}
	return fmt.Errorf("%w: screenshot is not an image: %q", types.ErrTransport, preview)
}
