package transport

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
)

type fakeClient struct {
	connectErr error
	enableErr  error
	outputs    map[string]string
	failOn     map[string]error
	panicOn    string
	// connectPanic is raised after the session is marked open
	connectPanic string

	connected   bool
	disconnects int
	secret      string
	executed    []string
}

func (c *fakeClient) Connect() error {
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	if c.connectPanic != "" {
		panic(c.connectPanic)
	}
	return nil
}

func (c *fakeClient) Disconnect() {
	c.disconnects++
	c.connected = false
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Enable(secret string) error {
	c.secret = secret
	return c.enableErr
}

func (c *fakeClient) ExecuteCommand(cmd string) (string, error) {
	if cmd == c.panicOn {
		panic("session exploded")
	}
	c.executed = append(c.executed, cmd)
	if err := c.failOn[cmd]; err != nil {
		return "partial(" + cmd + ")", err
	}
	if out, ok := c.outputs[cmd]; ok {
		return out, nil
	}
	return cmd + "\r\nSwitch#", nil
}

func managerWith(c *fakeClient) *Manager {
	return NewManager(WithDialer(func(entities.ConnectionProfile, time.Duration) Client { return c }))
}

var testProfile = entities.ConnectionProfile{
	Host:     "10.0.0.1",
	Username: "admin",
	Password: "cisco",
	Port:     23,
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager()
	assert.Equal(t, DefaultTimeout, m.timeout)
	assert.NotNil(t, m.dial)

	m = NewManager(WithTimeout(5*time.Second), WithTimeout(0), WithDialer(nil))
	assert.Equal(t, 5*time.Second, m.timeout)
	assert.NotNil(t, m.dial)
}

func TestManagerPassesTimeoutToDialer(t *testing.T) {
	var got time.Duration
	m := NewManager(WithTimeout(7*time.Second), WithDialer(func(_ entities.ConnectionProfile, timeout time.Duration) Client {
		got = timeout
		return &fakeClient{}
	}))
	_, err := m.Execute(testProfile, Request{Read: ios.StatusCommand})
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, got)
}

func TestManagerRead(t *testing.T) {
	c := &fakeClient{outputs: map[string]string{ios.StatusCommand: "10   SALES   active\r\nSwitch#"}}
	transcript, err := managerWith(c).Execute(testProfile, Request{Read: ios.StatusCommand})
	require.NoError(t, err)

	assert.Equal(t, "10   SALES   active\r\nSwitch#", transcript)
	assert.Equal(t, []string{ios.StatusCommand}, c.executed)
	assert.Equal(t, "cisco", c.secret)
	assert.Equal(t, 1, c.disconnects)
}

func TestManagerConfigBatch(t *testing.T) {
	c := &fakeClient{}
	req := Request{Commands: []string{"vlan 10", "name SALES"}, Save: true}
	transcript, err := managerWith(c).Execute(testProfile, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"configure terminal", "vlan 10", "name SALES", "end", "write memory"}, c.executed)
	assert.NotContains(t, transcript, SaveFailedNote)
	assert.Equal(t, 1, c.disconnects)
}

func TestManagerEmptyBatchSkipsConfigMode(t *testing.T) {
	c := &fakeClient{}
	_, err := managerWith(c).Execute(testProfile, Request{Save: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"write memory"}, c.executed)
}

func TestManagerEnableFailureIsIgnored(t *testing.T) {
	c := &fakeClient{enableErr: errors.New("enable secret rejected")}
	_, err := managerWith(c).Execute(testProfile, Request{Commands: []string{"vlan 10", "name VLAN_10"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"configure terminal", "vlan 10", "name VLAN_10", "end"}, c.executed)
}

func TestManagerSaveFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{
			name:   "transport error",
			client: &fakeClient{failOn: map[string]error{ios.SaveCommand: errors.New("read error: EOF")}},
		},
		{
			name:   "device refused",
			client: &fakeClient{outputs: map[string]string{ios.SaveCommand: "%Error opening nvram:/startup-config\r\nSwitch#"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcript, err := managerWith(tt.client).Execute(testProfile, Request{Commands: []string{"vlan 10"}, Save: true})
			require.NoError(t, err)
			assert.Contains(t, transcript, SaveFailedNote)
			assert.Equal(t, 1, tt.client.disconnects)
		})
	}
}

func TestManagerConnectFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"auth", fmt.Errorf("%w: switch rejected", ErrAuthentication), KindAuthentication},
		{"refused", errors.New("dial tcp 10.0.0.1:23: connect: connection refused"), KindConnectivityTimeout},
		{"other", errors.New("failed to start shell"), KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{connectErr: tt.err}
			transcript, err := managerWith(c).Execute(testProfile, Request{Read: ios.StatusCommand})
			require.Error(t, err)

			var de *DeviceError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.want, de.Kind)
			assert.Empty(t, transcript)
			assert.Empty(t, c.executed)
			assert.Equal(t, 1, c.disconnects)
		})
	}
}

func TestManagerCommandFailureClosesSession(t *testing.T) {
	c := &fakeClient{failOn: map[string]error{"vlan 10": fmt.Errorf("error executing vlan 10: %w", errTimeout)}}
	transcript, err := managerWith(c).Execute(testProfile, Request{Commands: []string{"vlan 10", "name SALES"}, Save: true})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrConnectivityTimeout)
	assert.Contains(t, transcript, "partial(vlan 10)")
	assert.Equal(t, []string{"configure terminal", "vlan 10"}, c.executed)
	assert.Equal(t, 1, c.disconnects)
}

func TestManagerRecoversPanic(t *testing.T) {
	c := &fakeClient{panicOn: ios.StatusCommand}
	_, err := managerWith(c).Execute(testProfile, Request{Read: ios.StatusCommand})
	require.Error(t, err)

	var de *DeviceError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnexpected, de.Kind)
	assert.Contains(t, err.Error(), "session exploded")
	assert.Equal(t, 1, c.disconnects)
}

func TestManagerPanicDuringConnectReleasesSession(t *testing.T) {
	c := &fakeClient{connectPanic: "handshake blew up"}
	transcript, err := managerWith(c).Execute(testProfile, Request{Read: ios.StatusCommand})
	require.Error(t, err)

	var de *DeviceError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnexpected, de.Kind)
	assert.Contains(t, err.Error(), "handshake blew up")
	assert.Empty(t, transcript)
	assert.Empty(t, c.executed)
	assert.Equal(t, 1, c.disconnects)
	assert.False(t, c.connected)
}
