package transport

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
)

const (
	DefaultTimeout = 30 * time.Second
	BufferSize     = 4096
	// maxSecretPrompts bounds how often enable may ask for the secret
	maxSecretPrompts = 3
)

var (
	promptPattern   = regexp.MustCompile(`(?m)^[\w\-.()/:@]+[#>]\s*$`)
	usernamePattern = regexp.MustCompile(`(?i)(username|login)\s*:\s*$`)
	passwordPattern = regexp.MustCompile(`(?i)password\s*:\s*$`)
	// IOS reports rejected logins on their own "% ..." line
	authFailurePattern = regexp.MustCompile(`(?im)^\s*%\s*(authentication failed|login invalid|bad passwords|access denied|login incorrect)`)
)

// Client abstracts a switch CLI session
type Client interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	ExecuteCommand(cmd string) (string, error)
	Enable(secret string) error
}

// New returns the client implementing the profile's transport
func New(profile entities.ConnectionProfile, timeout time.Duration) Client {
	switch profile.Transport {
	case entities.TransportSSH:
		return NewSSHClient(profile, timeout)
	default:
		return NewTelnetClient(profile, timeout)
	}
}

// promptSession is the byte-level half of a CLI session that the shared
// command and enable logic runs on
type promptSession interface {
	send(data string) error
	expect(timeout time.Duration, patterns ...*regexp.Regexp) (string, int, error)
}

// runCommand sends cmd and returns everything the switch printed up to and
// including the next prompt
func runCommand(s promptSession, cmd string, timeout time.Duration) (string, error) {
	if err := s.send(cmd + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command %s: %w", cmd, err)
	}
	output, _, err := s.expect(timeout, promptPattern)
	if err != nil {
		return output, fmt.Errorf("error executing %s: %w", cmd, err)
	}
	return output, nil
}

// elevate runs the enable dialogue. A nil error means the session ended at a
// privileged prompt.
func elevate(s promptSession, secret string, timeout time.Duration) (string, error) {
	if err := s.send(ios.EnableCommand + "\n"); err != nil {
		return "", fmt.Errorf("failed to send enable command: %w", err)
	}
	var transcript strings.Builder
	for i := 0; i <= maxSecretPrompts; i++ {
		output, idx, err := s.expect(timeout, passwordPattern, promptPattern)
		transcript.WriteString(output)
		if err != nil {
			return transcript.String(), fmt.Errorf("enable failed: %w", err)
		}
		if idx == 1 {
			if isPrivileged(output) {
				return transcript.String(), nil
			}
			return transcript.String(), fmt.Errorf("enable secret rejected")
		}
		if err := s.send(secret + "\n"); err != nil {
			return transcript.String(), fmt.Errorf("failed to send enable secret: %w", err)
		}
	}
	return transcript.String(), fmt.Errorf("enable secret rejected after %d attempts", maxSecretPrompts)
}

// isPrivileged reports whether the last prompt in output is a privileged one
func isPrivileged(output string) bool {
	prompts := promptPattern.FindAllString(output, -1)
	if len(prompts) == 0 {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(prompts[len(prompts)-1]), "#")
}

func describePatterns(patterns []*regexp.Regexp) string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
