package commands

import (
	"context"

	"github.com/mobile-next/adbocr/devices"
)

// DeviceLister lists devices known to adb
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]devices.DeviceInfo, error)
}

// DevicesRequest represents the parameters for listing devices
type DevicesRequest struct {
	// Scan also reports local TCP ports that could be emulators.
	Scan bool `json:"scan,omitempty"`
}

// DevicesCommand lists all devices adb knows about
func DevicesCommand(ctx context.Context, lister DeviceLister, req DevicesRequest) *CommandResponse {
	list, err := lister.ListDevices(ctx)
	if err != nil {
		return NewErrorResponse(err)
	}

	data := map[string]interface{}{
		"devices": list,
	}

	if req.Scan {
		ports, err := devices.ListeningPorts(ctx, devices.MinAdbPort)
		if err != nil {
			return NewErrorResponse(err)
		}
		if ports == nil {
			ports = []int{}
		}
		data["ports"] = ports
	}

	return NewSuccessResponse(data)
}
