package devices

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
	"github.com/shirou/gopsutil/v4/net"
)

const (
	// MinAdbPort is the lowest port emulators expose adb on.
	MinAdbPort         = 5555
	DefaultDialTimeout = 500 * time.Millisecond
)

// ErrNoLocalDevice means no local listening port answered as a device.
var ErrNoLocalDevice = fmt.Errorf("%w: no local adb device found", types.ErrConnection)

// Scanner looks for emulators listening on local TCP ports. Desktop
// emulators often pick a port other than 5555, so when the configured
// port fails every local listener is tried in turn.
type Scanner struct {
	Transport   Transport
	Host        string
	MinPort     int
	DialTimeout time.Duration

	// ListPorts returns candidate ports; defaults to ListeningPorts.
	ListPorts func(ctx context.Context, minPort int) ([]int, error)
}

func NewScanner(transport Transport) *Scanner {
	return &Scanner{
		Transport:   transport,
		Host:        "localhost",
		MinPort:     MinAdbPort,
		DialTimeout: DefaultDialTimeout,
		ListPorts:   ListeningPorts,
	}
}

// Scan connects to the first local port that answers as an online
// device, skipping the ports in exclude.
func (s *Scanner) Scan(ctx context.Context, exclude ...int) (Device, Address, error) {
	listPorts := s.ListPorts
	if listPorts == nil {
		listPorts = ListeningPorts
	}

	ports, err := listPorts(ctx, s.MinPort)
	if err != nil {
		return nil, Address{}, fmt.Errorf("%w: failed to list local ports: %v", types.ErrConnection, err)
	}

	for _, port := range ports {
		if slices.Contains(exclude, port) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, Address{}, fmt.Errorf("%w: %v", types.ErrConnection, err)
		}

		addr := Address{Host: s.Host, Port: port}
		utils.Verbose("Trying %s", addr)

		device, err := s.dial(ctx, addr)
		if err != nil {
			utils.Verbose("Port %d did not answer: %v", port, err)
			continue
		}

		utils.Info("Found device on %s", addr)
		return device, addr, nil
	}

	return nil, Address{}, ErrNoLocalDevice
}

func (s *Scanner) dial(ctx context.Context, addr Address) (Device, error) {
	timeout := s.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.Transport.Connect(dialCtx, addr)
}

// ListeningPorts returns the sorted, distinct local TCP4 ports in LISTEN
// state that are >= minPort.
func ListeningPorts(ctx context.Context, minPort int) ([]int, error) {
	conns, err := net.ConnectionsWithContext(ctx, "tcp4")
	if err != nil {
		return nil, err
	}

	var ports []int
	for _, conn := range conns {
		if conn.Status != "LISTEN" {
			continue
		}
		port := int(conn.Laddr.Port)
		if port < minPort || slices.Contains(ports, port) {
			continue
		}
		ports = append(ports, port)
	}

	slices.Sort(ports)
	return ports, nil
}
