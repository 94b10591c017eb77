package common

import (
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validServerConfig() ServerConfig {
	return ServerConfig{
		Transport: TransportConfig{Name: "tcp", Endpoint: "0.0.0.0:5150", TCPConf: TCPConf{TCPLingerSec: -1}},
		Probe:     ProbeConfig{Timeout: 5 * time.Second, BufferSize: 256 * 1024, LogLevel: "info"},
	}
}

func validClientConfig() ClientConfig {
	return ClientConfig{
		Transport: TransportConfig{Name: "tcp", Endpoint: "localhost:5150", TCPConf: TCPConf{TCPLingerSec: -1}},
		Probe:     ProbeConfig{Timeout: 5 * time.Second, BufferSize: 256 * 1024, LogLevel: "i"},
	}
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *ServerConfig)
		wantErr bool
		errMsg  string
	}{
		{name: "valid", modify: func(c *ServerConfig) {}},
		{name: "unix transport", modify: func(c *ServerConfig) { c.Transport.Name = "unix"; c.Transport.Endpoint = "/tmp/tprobe.sock" }},
		{name: "buffer not multiple of 8", modify: func(c *ServerConfig) { c.Probe.BufferSize = 1001 }, wantErr: true, errMsg: "multiple of 8"},
		{name: "buffer zero", modify: func(c *ServerConfig) { c.Probe.BufferSize = 0 }, wantErr: true, errMsg: "must be positive"},
		{name: "timeout zero", modify: func(c *ServerConfig) { c.Probe.Timeout = 0 }, wantErr: true, errMsg: "timeout must be positive"},
		{name: "unknown transport", modify: func(c *ServerConfig) { c.Transport.Name = "http" }, wantErr: true, errMsg: "transport must be one of"},
		{name: "empty endpoint", modify: func(c *ServerConfig) { c.Transport.Endpoint = "" }, wantErr: true, errMsg: "endpoint must not be empty"},
		{name: "bad log level", modify: func(c *ServerConfig) { c.Probe.LogLevel = "loud" }, wantErr: true, errMsg: "invalid log level"},
		{name: "negative socket buffer", modify: func(c *ServerConfig) { c.Transport.ReadBufferSize = -1 }, wantErr: true, errMsg: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validServerConfig()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, probe.ErrConfig))
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientConfig_Validate(t *testing.T) {
	c := validClientConfig()
	require.NoError(t, c.Validate())

	c.Duration = -time.Second
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")

	c = validClientConfig()
	c.Probe.BufferSize = 12
	assert.True(t, errors.Is(c.Validate(), probe.ErrConfig))
}

func TestClientConfig_Command(t *testing.T) {
	c := validClientConfig()
	assert.Equal(t, probe.CmdDownload, c.Command())
	c.Upload = true
	assert.Equal(t, probe.CmdUpload, c.Command())
}

func TestConfigString(t *testing.T) {
	s := validServerConfig()
	out := s.String()
	assert.Contains(t, out, "PROBE SERVER")
	assert.Contains(t, out, "0.0.0.0:5150")
	assert.Contains(t, out, "262144 bytes (256 KB)")
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "os default")

	c := validClientConfig()
	c.Upload = true
	c.Duration = 10 * time.Second
	out = c.String()
	assert.Contains(t, out, "PROBE CLIENT")
	assert.Contains(t, out, "upload")
	assert.Contains(t, out, "10s")
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:80", "localhost:80"},
		{"localhost", "localhost:5150"},
		{"10.0.0.1", "10.0.0.1:5150"},
		{"::1", "[::1]:5150"},
		{"[::1]", "[::1]:5150"},
		{"[::1]:9000", "[::1]:9000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveEndpoint(tt.in, DefaultPort), "ResolveEndpoint(%q)", tt.in)
	}
}
