package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

// NormalizeListenAddr accepts "port", ":port" or "host:port" and returns
// host and port separately. A missing host defaults to defaultHost.
func NormalizeListenAddr(addr, defaultHost string) (string, int, error) {
	// if no colon, assume it's a bare port number
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port: %s", portStr)
	}

	if host == "" {
		host = defaultHost
	}

	return host, port, nil
}
