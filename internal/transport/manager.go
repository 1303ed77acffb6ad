package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
	"github.com/carlosrabelo/vlansync/internal/util"
)

// SaveFailedNote is appended to the transcript when the configuration was
// applied but could not be persisted
const SaveFailedNote = "\n% Warning: configuration applied but not saved (write memory failed)\n"

// Request describes the work done inside one session
type Request struct {
	// Read is a single show command whose output is returned
	Read string
	// Commands is a configuration batch sent inside configure terminal
	Commands []string
	// Save persists the running configuration afterwards
	Save bool
}

// Dialer builds an unconnected client for a profile
type Dialer func(profile entities.ConnectionProfile, timeout time.Duration) Client

// Manager owns the lifecycle of one switch session per Execute call
type Manager struct {
	timeout time.Duration
	dial    Dialer
}

// Option configures a Manager
type Option func(*Manager)

// WithTimeout sets the dial and per-prompt timeout
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithDialer replaces the client factory
func WithDialer(dial Dialer) Option {
	return func(m *Manager) {
		if dial != nil {
			m.dial = dial
		}
	}
}

// NewManager creates a Manager using the transport selected by each profile
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		timeout: DefaultTimeout,
		dial:    New,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute opens a session, runs the request and closes the session on every
// path. Any returned error is a *DeviceError. Failure to enter privileged
// mode and failure to save are not errors.
func (m *Manager) Execute(profile entities.ConnectionProfile, req Request) (transcript string, err error) {
	log := util.WithDevice(profile.Host)
	defer func() {
		if r := recover(); r != nil {
			err = &DeviceError{Kind: KindUnexpected, Cause: fmt.Errorf("panic during session: %v", r)}
		}
	}()

	client := m.dial(profile, m.timeout)
	// Disconnect is safe on a half-open client
	defer client.Disconnect()
	log.WithField("phase", "connecting").Debugf("Opening %s session to %s", profile.Transport, profile.Address())
	if err := client.Connect(); err != nil {
		return "", Classify(err)
	}

	// Some devices start in privileged mode or ignore enable entirely
	if err := client.Enable(profile.Password); err != nil {
		log.Debugf("Privilege escalation skipped: %v", err)
	}

	var out strings.Builder
	log = log.WithField("phase", "executing")
	if req.Read != "" {
		output, err := client.ExecuteCommand(req.Read)
		out.WriteString(output)
		if err != nil {
			return out.String(), Classify(err)
		}
	}

	if len(req.Commands) > 0 {
		for _, cmd := range ios.ConfigBatch(req.Commands) {
			output, err := client.ExecuteCommand(cmd)
			out.WriteString(output)
			if err != nil {
				return out.String(), Classify(err)
			}
			if ios.IsCommandError(output) {
				log.Warnf("Switch rejected %q", cmd)
			}
		}
	}

	if req.Save {
		output, err := client.ExecuteCommand(ios.SaveCommand)
		out.WriteString(output)
		switch {
		case err != nil:
			log.WithField("phase", "saving").Warnf("Error saving configuration: %v", err)
			out.WriteString(SaveFailedNote)
		case ios.IsCommandError(output):
			log.WithField("phase", "saving").Warn("Switch refused to save the configuration")
			out.WriteString(SaveFailedNote)
		default:
			log.WithField("phase", "saving").Debug("Configuration saved")
		}
	}

	return out.String(), nil
}
