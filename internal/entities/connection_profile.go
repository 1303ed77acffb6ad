package entities

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is used whenever the caller's port is absent or not a number
const DefaultPort = 23

// Transport selects the remote terminal protocol used to reach the switch
type Transport int

const (
	TransportTelnet Transport = iota
	TransportSSH
)

// String returns the lowercase protocol name
func (t Transport) String() string {
	switch t {
	case TransportSSH:
		return "ssh"
	case TransportTelnet:
		return "telnet"
	default:
		return fmt.Sprintf("transport(%d)", int(t))
	}
}

// ParseTransport converts a user supplied protocol name into a Transport.
// An empty name selects Telnet, matching the historical default.
func ParseTransport(name string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "telnet", "cisco_ios_telnet":
		return TransportTelnet, nil
	case "ssh", "cisco_ios":
		return TransportSSH, nil
	default:
		return TransportTelnet, fmt.Errorf("transport %s is invalid, must be 'telnet' or 'ssh'", name)
	}
}

// ParsePort converts a raw port value, falling back to DefaultPort when it
// is empty or non-numeric
func ParsePort(raw string) int {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPort
	}
	return port
}

// ConnectionProfile carries everything needed to open one CLI session.
// It is supplied per call and never stored by the core.
type ConnectionProfile struct {
	Host      string
	Username  string
	Password  string
	Port      int
	Transport Transport
}

// Address returns host:port for dialing
func (p ConnectionProfile) Address() string {
	port := p.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}

// HasCredentials reports whether host, username and password are all present
func (p ConnectionProfile) HasCredentials() bool {
	return p.Host != "" && p.Username != "" && p.Password != ""
}
