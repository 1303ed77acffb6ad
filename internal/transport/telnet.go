package transport

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/ziutek/telnet"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
	"github.com/carlosrabelo/vlansync/internal/util"
)

// TelnetClient manages a Telnet connection to a switch
type TelnetClient struct {
	conn       *telnet.Conn
	profile    entities.ConnectionProfile
	timeout    time.Duration
	privileged bool
}

// NewTelnetClient creates a new Telnet client for the given profile
func NewTelnetClient(profile entities.ConnectionProfile, timeout time.Duration) *TelnetClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TelnetClient{profile: profile, timeout: timeout}
}

// Connect dials the switch and logs in
func (tc *TelnetClient) Connect() error {
	if tc.conn != nil {
		return nil
	}
	addr := tc.profile.Address()
	dialer := &net.Dialer{Timeout: tc.timeout}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	conn, err := telnet.NewConn(rawConn)
	if err != nil {
		rawConn.Close()
		return fmt.Errorf("failed to start telnet session with %s: %w", addr, err)
	}
	conn.SetUnixWriteMode(true)
	tc.conn = conn
	util.WithDevice(tc.profile.Host).Debugf("Connected to %s via telnet", addr)

	if err := tc.login(); err != nil {
		tc.Disconnect()
		return err
	}

	if _, err := runCommand(tc, ios.PagerDisableCommand, tc.timeout); err != nil {
		util.WithDevice(tc.profile.Host).Debugf("Could not disable paging: %v", err)
	}
	return nil
}

// login answers the username and password prompts. Devices with only a
// line password skip the username step, and devices without login go
// straight to a prompt.
func (tc *TelnetClient) login() error {
	log := util.WithDevice(tc.profile.Host)
	output, idx, err := tc.expect(tc.timeout, usernamePattern, passwordPattern, promptPattern)
	if err != nil {
		return fmt.Errorf("failed to wait for login prompt: %w, output: %s", err, output)
	}
	switch idx {
	case 0:
		if err := tc.send(tc.profile.Username + "\n"); err != nil {
			return fmt.Errorf("failed to send username: %w", err)
		}
		log.Debugf("Sent username for prompt %s", strings.TrimSpace(lastLine(output)))
		if output, _, err = tc.expect(tc.timeout, passwordPattern); err != nil {
			return fmt.Errorf("failed to wait for password prompt: %w, output: %s", err, output)
		}
		fallthrough
	case 1:
		if err := tc.send(tc.profile.Password + "\n"); err != nil {
			return fmt.Errorf("failed to send password: %w", err)
		}
		log.Debugf("Sent password")
	case 2:
		tc.privileged = isPrivileged(output)
		return nil
	}

	// The prompt wins over the failure text so an exec banner cannot fail a good login
	output, idx, err = tc.expect(tc.timeout, promptPattern, authFailurePattern, usernamePattern, passwordPattern)
	if err != nil {
		return fmt.Errorf("failed to wait for prompt after login: %w, output: %s", err, output)
	}
	if idx != 0 {
		return fmt.Errorf("%w: switch %s rejected the credentials", ErrAuthentication, tc.profile.Host)
	}
	tc.privileged = isPrivileged(output)
	return nil
}

// Enable raises the session to privileged mode
func (tc *TelnetClient) Enable(secret string) error {
	if tc.conn == nil {
		return fmt.Errorf("not connected to %s", tc.profile.Host)
	}
	if tc.privileged {
		util.WithDevice(tc.profile.Host).Debugf("%s already in privileged mode", tc.profile.Host)
		return nil
	}
	util.WithDevice(tc.profile.Host).Debugf("Elevating to privileged mode on %s", tc.profile.Host)
	if _, err := elevate(tc, secret, tc.timeout); err != nil {
		return err
	}
	tc.privileged = true
	return nil
}

// Disconnect closes the Telnet connection
func (tc *TelnetClient) Disconnect() {
	if tc.conn != nil {
		tc.conn.Close()
		util.WithDevice(tc.profile.Host).Debug("Disconnected")
		tc.conn = nil
		tc.privileged = false
	}
}

func (tc *TelnetClient) IsConnected() bool {
	return tc.conn != nil
}

// ExecuteCommand sends a command to the switch and returns its raw output,
// echo and trailing prompt included
func (tc *TelnetClient) ExecuteCommand(cmd string) (string, error) {
	if tc.conn == nil {
		return "", fmt.Errorf("not connected to %s", tc.profile.Host)
	}
	util.WithDevice(tc.profile.Host).Debugf("Executing: %s", cmd)
	output, err := runCommand(tc, cmd, tc.timeout)
	if err != nil {
		return output, err
	}
	util.LogRawOutput(tc.profile.Host, cmd, output)
	return output, nil
}

func (tc *TelnetClient) send(data string) error {
	if err := tc.conn.SetWriteDeadline(time.Now().Add(tc.timeout)); err != nil {
		return err
	}
	_, err := tc.conn.Write([]byte(data))
	return err
}

// expect reads until one of the patterns matches the accumulated output and
// returns the index of the first matching pattern
func (tc *TelnetClient) expect(timeout time.Duration, patterns ...*regexp.Regexp) (string, int, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	if err := tc.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", -1, err
	}
	for {
		n, err := tc.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			text := output.String()
			for i, p := range patterns {
				if p.MatchString(text) {
					return text, i, nil
				}
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return output.String(), -1, fmt.Errorf("%w waiting for %s", errTimeout, describePatterns(patterns))
			}
			return output.String(), -1, fmt.Errorf("read error: %w", err)
		}
	}
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\r\n"), "\n")
	return lines[len(lines)-1]
}
