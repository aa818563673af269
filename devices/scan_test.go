package devices_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/devices/devicetest"
	"github.com/mobile-next/adbocr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticPorts(ports ...int) func(context.Context, int) ([]int, error) {
	return func(ctx context.Context, minPort int) ([]int, error) {
		return ports, nil
	}
}

func TestScanner_FindsFirstAnsweringPort(t *testing.T) {
	transport := devicetest.NewTransport(devicetest.NewDevice("localhost:5559", 10, 10))
	scanner := devices.NewScanner(transport)
	scanner.ListPorts = staticPorts(5555, 5557, 5559, 5561)

	device, addr, err := scanner.Scan(context.Background(), 5555)
	require.NoError(t, err)
	assert.Equal(t, "localhost:5559", device.ID())
	assert.Equal(t, devices.Address{Host: "localhost", Port: 5559}, addr)

	assert.Equal(t, []devices.Address{
		{Host: "localhost", Port: 5557},
		{Host: "localhost", Port: 5559},
	}, transport.Connects())
}

func TestScanner_NothingAnswers(t *testing.T) {
	scanner := devices.NewScanner(devicetest.NewTransport())
	scanner.ListPorts = staticPorts(5557, 5558)

	_, _, err := scanner.Scan(context.Background())
	assert.ErrorIs(t, err, devices.ErrNoLocalDevice)
	assert.ErrorIs(t, err, types.ErrConnection)
}

func TestScanner_ListPortsFails(t *testing.T) {
	scanner := devices.NewScanner(devicetest.NewTransport())
	scanner.ListPorts = func(ctx context.Context, minPort int) ([]int, error) {
		return nil, errors.New("permission denied")
	}

	_, _, err := scanner.Scan(context.Background())
	assert.ErrorIs(t, err, types.ErrConnection)
}

func TestListeningPorts_AboveMinimum(t *testing.T) {
	ports, err := devices.ListeningPorts(context.Background(), devices.MinAdbPort)
	if err != nil {
		t.Skipf("cannot list connections here: %v", err)
	}
	for _, port := range ports {
		assert.GreaterOrEqual(t, port, devices.MinAdbPort)
	}
}
