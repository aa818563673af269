package devices

import (
	"testing"

	"github.com/mobile-next/adbocr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSizer struct {
	size types.Size
	ok   bool
}

func (f *fixedSizer) LastSize() (types.Size, bool) {
	return f.size, f.ok
}

func newTestSession(native types.Size) *DeviceSession {
	return NewDeviceSession(Address{Host: "127.0.0.1", Port: 5555}, "127.0.0.1:5555", &fixedSizer{size: native, ok: true})
}

func TestDeviceSession_SetScreenSize(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{"positive", 540, 960, false},
		{"one by one", 1, 1, false},
		{"zero width", 0, 960, true},
		{"zero height", 540, 0, true},
		{"negative", -540, 960, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(types.Size{Width: 1080, Height: 1920})
			require.NoError(t, s.SetScreenSize(720, 1280))

			err := s.SetScreenSize(tt.width, tt.height)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidConfig)
				assert.Equal(t, types.Size{Width: 720, Height: 1280}, s.Profile().LogicalSize())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.Size{Width: tt.width, Height: tt.height}, s.Profile().LogicalSize())
		})
	}
}

func TestDeviceSession_SetDensity(t *testing.T) {
	s := newTestSession(types.Size{Width: 1080, Height: 1920})

	require.NoError(t, s.SetDensity(320))
	assert.ErrorIs(t, s.SetDensity(0), types.ErrInvalidConfig)
	assert.ErrorIs(t, s.SetDensity(-1), types.ErrInvalidConfig)
	assert.Equal(t, 320, s.Profile().Density)
}

func TestDeviceSession_ToNative(t *testing.T) {
	tests := []struct {
		name    string
		logical types.Size
		native  types.Size
		x, y    int
		wantX   int
		wantY   int
	}{
		{"identity", types.Size{Width: 1080, Height: 1920}, types.Size{Width: 1080, Height: 1920}, 500, 500, 500, 500},
		{"unset logical size", types.Size{}, types.Size{Width: 1080, Height: 1920}, 500, 500, 500, 500},
		{"double", types.Size{Width: 540, Height: 960}, types.Size{Width: 1080, Height: 1920}, 250, 250, 500, 500},
		{"half", types.Size{Width: 1080, Height: 1920}, types.Size{Width: 540, Height: 960}, 251, 3, 125, 1},
		{"independent axes", types.Size{Width: 100, Height: 100}, types.Size{Width: 300, Height: 200}, 10, 10, 30, 20},
		{"negative stays negative", types.Size{Width: 540, Height: 960}, types.Size{Width: 1080, Height: 1920}, -1, 0, -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.native)
			if !tt.logical.IsEmpty() {
				require.NoError(t, s.SetScreenSize(tt.logical.Width, tt.logical.Height))
			}

			x, y, err := s.ToNative(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestDeviceSession_ToLogical(t *testing.T) {
	s := newTestSession(types.Size{Width: 1080, Height: 1920})
	require.NoError(t, s.SetScreenSize(540, 960))

	x, y, err := s.ToLogical(500, 1000)
	require.NoError(t, err)
	assert.Equal(t, 250, x)
	assert.Equal(t, 500, y)
}

func TestDeviceSession_NoCapture(t *testing.T) {
	s := NewDeviceSession(Address{Host: "emulator-5554"}, "emulator-5554", &fixedSizer{})
	require.NoError(t, s.SetScreenSize(540, 960))

	_, _, err := s.ToNative(10, 10)
	assert.ErrorIs(t, err, types.ErrNoCaptureAvailable)

	_, err = s.NativeSize()
	assert.ErrorIs(t, err, types.ErrNoCaptureAvailable)
}

func TestDeviceSession_Profile(t *testing.T) {
	s := NewDeviceSession(Address{Host: "10.0.0.2", Port: 5557}, "10.0.0.2:5557", nil)
	require.NoError(t, s.SetDensity(480))

	assert.Equal(t, DeviceProfile{Host: "10.0.0.2", Port: 5557, Serial: "10.0.0.2:5557", Density: 480}, s.Profile())
}

func TestScale_Floors(t *testing.T) {
	assert.Equal(t, 2, scale(3, 3, 4))       // 2.25
	assert.Equal(t, 2, scale(5, 1, 2))       // 2.5
	assert.Equal(t, -3, scale(-5, 1, 2))     // -2.5
	assert.Equal(t, -1, scale(-1, 1, 3))     // -0.33
	assert.Equal(t, 1079, scale(3239, 1, 3)) // 1079.67
}
