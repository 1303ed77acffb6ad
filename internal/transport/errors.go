package transport

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a device session failure
type Kind int

const (
	KindUnexpected Kind = iota
	KindAuthentication
	KindConnectivityTimeout
)

// String returns the identifier used in results and logs
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindConnectivityTimeout:
		return "connectivity_timeout"
	default:
		return "unexpected"
	}
}

// Sentinel errors, one per Kind
var (
	ErrAuthentication      = errors.New("authentication failed")
	ErrConnectivityTimeout = errors.New("connection timed out or host unreachable")
	ErrUnexpected          = errors.New("unexpected error")
)

// errTimeout marks prompt waits that ran out of time
var errTimeout = errors.New("timeout")

// DeviceError is the only error the Manager returns
type DeviceError struct {
	Kind  Kind
	Cause error
}

func (e *DeviceError) Error() string {
	switch e.Kind {
	case KindAuthentication:
		return "authentication failed: check username and password"
	case KindConnectivityTimeout:
		return fmt.Sprintf("connection timed out or host unreachable: %v", e.Cause)
	default:
		return fmt.Sprintf("unexpected error: %v", e.Cause)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *DeviceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Cause}
}

func (e *DeviceError) sentinel() error {
	switch e.Kind {
	case KindAuthentication:
		return ErrAuthentication
	case KindConnectivityTimeout:
		return ErrConnectivityTimeout
	default:
		return ErrUnexpected
	}
}

// errorHints maps substrings of transport errors to a Kind. Checked in order
// after the typed checks in classifyKind.
var errorHints = []struct {
	hint string
	kind Kind
}{
	{"unable to authenticate", KindAuthentication},
	{"authentication failed", KindAuthentication},
	{"i/o timeout", KindConnectivityTimeout},
	{"timed out", KindConnectivityTimeout},
	{"timer expired", KindConnectivityTimeout},
	{"deadline exceeded", KindConnectivityTimeout},
	{"connection refused", KindConnectivityTimeout},
	{"no route to host", KindConnectivityTimeout},
	{"host is unreachable", KindConnectivityTimeout},
	{"network is unreachable", KindConnectivityTimeout},
	{"no such host", KindConnectivityTimeout},
}

// Classify converts any session failure into a DeviceError
func Classify(err error) *DeviceError {
	if err == nil {
		return nil
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return de
	}
	return &DeviceError{Kind: classifyKind(err), Cause: err}
}

func classifyKind(err error) Kind {
	if errors.Is(err, ErrAuthentication) {
		return KindAuthentication
	}
	if errors.Is(err, errTimeout) || errors.Is(err, ErrConnectivityTimeout) {
		return KindConnectivityTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindConnectivityTimeout
	}
	if status.Code(err) == codes.DeadlineExceeded {
		return KindConnectivityTimeout
	}
	lower := strings.ToLower(err.Error())
	for _, h := range errorHints {
		if strings.Contains(lower, h.hint) {
			return h.kind
		}
	}
	return KindUnexpected
}
