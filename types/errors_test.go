package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain sentinel", ErrTransport, "transport"},
		{"wrapped once", fmt.Errorf("%w: adb exited 1", ErrConnection), "connection"},
		{"wrapped twice", fmt.Errorf("tap: %w", fmt.Errorf("%w: x=-1", ErrInvalidCoordinate)), "invalid_coordinate"},
		{"no capture", ErrNoCaptureAvailable, "no_capture_available"},
		{"unknown", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestSize_Contains(t *testing.T) {
	s := Size{Width: 1080, Height: 1920}

	assert.True(t, s.Contains(0, 0))
	assert.True(t, s.Contains(1079, 1919))
	assert.False(t, s.Contains(1080, 0))
	assert.False(t, s.Contains(0, 1920))
	assert.False(t, s.Contains(-1, 0))
	assert.False(t, Size{}.Contains(0, 0))
}

func TestPointerCommand_String(t *testing.T) {
	cmds := []PointerCommand{
		Tap{X: 1, Y: 2},
		Swipe{X1: 1, Y1: 2, X2: 3, Y2: 4, DurationMs: 300},
		Back{},
	}
	want := []string{"tap(1,2)", "swipe(1,2 -> 3,4, 300ms)", "back"}

	for i, c := range cmds {
		assert.Equal(t, want[i], c.String())
	}
}
