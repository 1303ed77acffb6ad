package transport

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"golang.org/x/crypto/ssh"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
	"github.com/carlosrabelo/vlansync/internal/util"
)

// SSHClient manages an interactive SSH shell on a switch
type SSHClient struct {
	profile    entities.ConnectionProfile
	timeout    time.Duration
	client     *ssh.Client
	expecter   *expect.GExpect
	privileged bool
}

// NewSSHClient creates a new SSH client for the given profile
func NewSSHClient(profile entities.ConnectionProfile, timeout time.Duration) *SSHClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SSHClient{profile: profile, timeout: timeout}
}

// Connect opens the SSH connection and spawns an interactive shell
func (sc *SSHClient) Connect() error {
	if sc.IsConnected() {
		return nil
	}
	addr := sc.profile.Address()

	// Some IOS images only offer keyboard-interactive
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = sc.profile.Password
		}
		return answers, nil
	})
	sshConfig := &ssh.ClientConfig{
		User:            sc.profile.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(sc.profile.Password), keyboardInteractive},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sc.timeout,
	}

	dialer := &net.Dialer{Timeout: sc.timeout}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s via SSH: %w", addr, err)
	}
	_ = rawConn.SetDeadline(time.Now().Add(sc.timeout))
	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sshConfig)
	if err != nil {
		rawConn.Close()
		return fmt.Errorf("failed to establish SSH client connection to %s: %w", addr, err)
	}
	_ = rawConn.SetDeadline(time.Time{})
	client := ssh.NewClient(clientConn, chans, reqs)

	exp, _, err := expect.SpawnSSH(client, sc.timeout,
		expect.Verbose(false),
		expect.CheckDuration(100*time.Millisecond),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to start shell for %s: %w", addr, err)
	}
	sc.client = client
	sc.expecter = exp
	util.WithDevice(sc.profile.Host).Debugf("Connected to %s via SSH", addr)

	initial, _, err := sc.expect(sc.timeout, promptPattern)
	if err != nil {
		sc.Disconnect()
		return fmt.Errorf("failed to detect initial prompt on %s: %w", addr, err)
	}
	sc.privileged = isPrivileged(initial)

	if _, err := runCommand(sc, ios.PagerDisableCommand, sc.timeout); err != nil {
		util.WithDevice(sc.profile.Host).Debugf("Could not disable paging: %v", err)
	}
	return nil
}

// Enable raises the shell to privileged mode
func (sc *SSHClient) Enable(secret string) error {
	if !sc.IsConnected() {
		return fmt.Errorf("not connected to %s", sc.profile.Host)
	}
	if sc.privileged {
		util.WithDevice(sc.profile.Host).Debugf("%s already in privileged mode", sc.profile.Host)
		return nil
	}
	util.WithDevice(sc.profile.Host).Debugf("Elevating to privileged mode on %s", sc.profile.Host)
	if _, err := elevate(sc, secret, sc.timeout); err != nil {
		return err
	}
	sc.privileged = true
	return nil
}

// Disconnect closes the shell and the SSH connection
func (sc *SSHClient) Disconnect() {
	if sc.expecter != nil {
		_ = sc.expecter.Close()
		sc.expecter = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
		util.WithDevice(sc.profile.Host).Debug("Disconnected")
	}
	sc.privileged = false
}

func (sc *SSHClient) IsConnected() bool {
	return sc.client != nil && sc.expecter != nil
}

// ExecuteCommand sends a command to the switch and returns its raw output,
// echo and trailing prompt included
func (sc *SSHClient) ExecuteCommand(cmd string) (string, error) {
	if !sc.IsConnected() {
		return "", fmt.Errorf("not connected to %s", sc.profile.Host)
	}
	util.WithDevice(sc.profile.Host).Debugf("Executing: %s", cmd)
	output, err := runCommand(sc, cmd, sc.timeout)
	if err != nil {
		return output, err
	}
	util.LogRawOutput(sc.profile.Host, cmd, output)
	return output, nil
}

func (sc *SSHClient) send(data string) error {
	return sc.expecter.Send(data)
}

func (sc *SSHClient) expect(timeout time.Duration, patterns ...*regexp.Regexp) (string, int, error) {
	output, _, err := sc.expecter.Expect(anyOf(patterns), timeout)
	if err != nil {
		if status.Code(err) == codes.DeadlineExceeded || strings.Contains(err.Error(), "timer expired") {
			return output, -1, fmt.Errorf("%w waiting for %s: %v", errTimeout, describePatterns(patterns), err)
		}
		return output, -1, fmt.Errorf("read error: %w", err)
	}
	for i, p := range patterns {
		if p.MatchString(output) {
			return output, i, nil
		}
	}
	return output, -1, fmt.Errorf("output did not match %s", describePatterns(patterns))
}

// anyOf joins patterns into one alternation so goexpect can wait on all of
// them at once
func anyOf(patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 1 {
		return patterns[0]
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(?:" + p.String() + ")"
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}
