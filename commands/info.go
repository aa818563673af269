package commands

import (
	"context"

	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/types"
)

// DeviceInfoResponse describes the connected device and the session's
// screen profile
type DeviceInfoResponse struct {
	ID         string                `json:"id"`
	Address    string                `json:"address"`
	Connected  bool                  `json:"connected"`
	ScreenSize types.Size            `json:"screenSize"`
	Density    int                   `json:"density"`
	Profile    devices.DeviceProfile `json:"profile"`
}

// DeviceInfoCommand queries `wm size` and `wm density` on the device
func DeviceInfoCommand(ctx context.Context, s *session.Session) *CommandResponse {
	size, err := s.DeviceScreenSize(ctx)
	if err != nil {
		return NewErrorResponse(err)
	}

	density, err := s.DeviceScreenDensity(ctx)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(DeviceInfoResponse{
		ID:         s.ID(),
		Address:    s.Address().String(),
		Connected:  s.IsConnected(ctx),
		ScreenSize: size,
		Density:    density,
		Profile:    s.Profile(),
	})
}
