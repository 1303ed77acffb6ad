package transport

import (
	"bufio"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/vlansync/internal/entities"
)

const (
	invalidInput = "                ^\r\n% Invalid input detected at '^' marker.\r\n\r\n"

	sampleVLANBrief = "VLAN Name                             Status    Ports\r\n" +
		"---- -------------------------------- --------- -------------------------------\r\n" +
		"1    default                          active    Fa0/2, Fa0/3\r\n" +
		"10   SALES                            active    Fa0/1\r\n" +
		"1002 fddi-default                     act/unsup\r\n" +
		"1003 token-ring-default               act/unsup\r\n"
)

// fakeIOS scripts just enough of an IOS CLI to drive a session
type fakeIOS struct {
	username        string
	password        string
	secret          string
	hostname        string
	askLogin        bool
	passwordOnly    bool
	startPrivileged bool
	rejectSave      bool
	hangOn          string
	vlanBrief       string
	// banner is printed after a good login, before the first prompt
	banner string

	mu       sync.Mutex
	received []string
}

func newFakeIOS() *fakeIOS {
	return &fakeIOS{
		username:  "admin",
		password:  "cisco",
		secret:    "cisco",
		hostname:  "Switch",
		askLogin:  true,
		vlanBrief: sampleVLANBrief,
	}
}

func (f *fakeIOS) record(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, line)
}

func (f *fakeIOS) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.received))
	copy(out, f.received)
	return out
}

func (f *fakeIOS) serve(rw io.ReadWriter) {
	r := bufio.NewReader(rw)
	write := func(s string) { _, _ = io.WriteString(rw, s) }
	readLine := func() (string, error) {
		line, err := r.ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err
	}

	if f.askLogin {
		write("\r\nUser Access Verification\r\n\r\n")
		user := f.username
		if !f.passwordOnly {
			write("Username: ")
			var err error
			if user, err = readLine(); err != nil {
				return
			}
		}
		write("Password: ")
		pass, err := readLine()
		if err != nil {
			return
		}
		if user != f.username || pass != f.password {
			write("\r\n% Authentication failed\r\n\r\nUsername: ")
			_, _ = io.Copy(io.Discard, r)
			return
		}
	}

	privileged := f.startPrivileged
	mode := ""
	prompt := func() string {
		p := f.hostname
		if mode != "" {
			p += "(" + mode + ")"
		}
		if privileged {
			return p + "#"
		}
		return p + ">"
	}

	write("\r\n" + f.banner + prompt())
	for {
		line, err := readLine()
		if err != nil {
			return
		}
		f.record(line)
		write(line + "\r\n")
		if f.hangOn != "" && line == f.hangOn {
			_, _ = io.Copy(io.Discard, r)
			return
		}
		switch {
		case line == "enable":
			if !privileged {
				write("Password: ")
				secret, err := readLine()
				if err != nil {
					return
				}
				write("\r\n")
				if secret == f.secret {
					privileged = true
				} else {
					write("% Bad secrets\r\n\r\n")
				}
			}
		case line == "terminal length 0":
		case line == "show vlan brief":
			write(f.vlanBrief)
		case line == "configure terminal":
			if !privileged {
				write(invalidInput)
				break
			}
			mode = "config"
			write("Enter configuration commands, one per line.  End with CNTL/Z.\r\n")
		case strings.HasPrefix(line, "vlan ") && mode != "":
			mode = "config-vlan"
		case strings.HasPrefix(line, "name ") && mode == "config-vlan":
		case line == "end" && mode != "":
			mode = ""
		case line == "write memory":
			if !privileged || f.rejectSave {
				write("%Error opening nvram:/startup-config (Permission denied)\r\n")
				break
			}
			write("Building configuration...\r\n[OK]\r\n")
		default:
			write(invalidInput)
		}
		write(prompt())
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln
}

func startTelnetServer(t *testing.T, f *fakeIOS) string {
	t.Helper()
	ln := listen(t)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				f.serve(conn)
			}()
		}
	}()
	return ln.Addr().String()
}

// startSilentServer accepts connections and never writes a byte
func startSilentServer(t *testing.T) string {
	t.Helper()
	ln := listen(t)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_, _ = io.Copy(io.Discard, conn)
			}()
		}
	}()
	return ln.Addr().String()
}

func startSSHServer(t *testing.T, f *fakeIOS) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == f.username && string(pass) == f.password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	config.AddHostKey(signer)

	ln := listen(t)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSHConn(conn, config, f)
		}
	}()
	return ln.Addr().String()
}

func serveSSHConn(nConn net.Conn, config *ssh.ServerConfig, f *fakeIOS) {
	defer nConn.Close()
	sconn, chans, reqs, err := ssh.NewServerConn(nConn, config)
	if err != nil {
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			return
		}
		shell := make(chan struct{})
		var once sync.Once
		go func() {
			for req := range requests {
				switch req.Type {
				case "shell":
					_ = req.Reply(true, nil)
					once.Do(func() { close(shell) })
				case "pty-req", "env", "window-change":
					_ = req.Reply(true, nil)
				default:
					_ = req.Reply(false, nil)
				}
			}
		}()
		go func() {
			defer ch.Close()
			<-shell
			f.serve(ch)
		}()
	}
}

func profileFor(t *testing.T, addr string, transport entities.Transport, f *fakeIOS) entities.ConnectionProfile {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return entities.ConnectionProfile{
		Host:      host,
		Port:      entities.ParsePort(port),
		Username:  f.username,
		Password:  f.password,
		Transport: transport,
	}
}
