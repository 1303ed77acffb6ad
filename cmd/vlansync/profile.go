package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/carlosrabelo/vlansync/internal/config"
	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/transport"
	"github.com/carlosrabelo/vlansync/internal/util"
)

type globalOptions struct {
	configPath string
	target     string
	host       string
	username   string
	password   string
	port       string
	transport  string
	timeout    time.Duration
	verbosity  int
	jsonOutput bool
	logJSON    bool
	logLevel   string
}

// readPassword asks for the password on the controlling terminal. It
// returns an empty password when stdin is not a terminal.
var readPassword = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// resolveProfile builds the connection profile from the YAML entry named by
// --target, or from the global YAML values when the target is not
// registered, with explicit flags taking precedence
func resolveProfile(cmd *cobra.Command, opts *globalOptions) (entities.ConnectionProfile, time.Duration, error) {
	var profile entities.ConnectionProfile
	var timeout time.Duration

	path, err := config.FindConfig(opts.configPath)
	if err != nil {
		return profile, 0, err
	}

	profile.Host = opts.target
	profile.Port = entities.DefaultPort
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return profile, 0, err
		}
		// An unregistered target is taken as the switch address and still
		// gets the global credentials and transport
		sw, err := cfg.Switch(opts.target)
		if err != nil {
			sw = cfg.Defaults(opts.target)
		} else {
			util.WithDevice(sw.Target).Debugf("Using switch entry from %s", path)
		}
		profile = sw.Profile()
		timeout = sw.Timeout
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		profile.Host = opts.host
	}
	if flags.Changed("username") {
		profile.Username = opts.username
	}
	if flags.Changed("password") {
		profile.Password = opts.password
	}
	if flags.Changed("port") {
		profile.Port = entities.ParsePort(opts.port)
	}
	if flags.Changed("transport") {
		t, err := entities.ParseTransport(opts.transport)
		if err != nil {
			return profile, 0, err
		}
		profile.Transport = t
	}
	if flags.Changed("timeout") {
		timeout = opts.timeout
	}

	if profile.Host != "" && profile.Password == "" {
		pw, err := readPassword(fmt.Sprintf("Password for %s@%s: ", profile.Username, profile.Host))
		if err != nil {
			return profile, 0, err
		}
		profile.Password = pw
	}
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}
	return profile, timeout, nil
}
