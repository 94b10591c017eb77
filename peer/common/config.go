package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
)

const (
	// DefaultPort is used for client endpoints without a port
	DefaultPort = 5150
	// DefaultTimeout applies to connecting and to every read and write
	DefaultTimeout = 5 * time.Second
	// DefaultBufferSize is the size of every read and write
	DefaultBufferSize = 256 * 1024
)

// --------------------------------------------------------------------------
// Shared configuration structs
// --------------------------------------------------------------------------

// SocketConf holds the socket buffer sizes (0 keeps the OS default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	// TCPLingerSec < 0 keeps the OS default
	TCPLingerSec int
}

// TransportConfig selects the transport and its options
type TransportConfig struct {
	// Name of the transport (tcp, unix)
	Name string
	// Endpoint is the address to listen on or to connect to
	Endpoint string
	SocketConf
	TCPConf
}

// ProbeConfig holds the parameters shared by the server and the client
type ProbeConfig struct {
	// Timeout is applied to every single read and write (and to connecting)
	Timeout time.Duration
	// BufferSize is the size of every read and write in bytes
	BufferSize int
	// Validate enables payload validation when receiving
	Validate bool
	// LogLevel is the level at which logs will be output
	LogLevel string
}

// Session returns the part of the configuration the transfer engine needs
func (c ProbeConfig) Session() probe.SessionConfig {
	return probe.SessionConfig{BufferSize: c.BufferSize, Validate: c.Validate}
}

// validate checks the fields shared by server and client
func (c ProbeConfig) validate() error {
	if err := c.Session().Check(); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return &probe.ConfigError{Field: "timeout", Value: c.Timeout, Message: "timeout must be positive"}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &probe.ConfigError{Field: "log-level", Value: c.LogLevel, Message: err.Error()}
	}
	return nil
}

// validate checks the transport fields
func (c TransportConfig) validate() error {
	switch c.Name {
	case "tcp", "unix":
	default:
		return &probe.ConfigError{Field: "transport", Value: c.Name, Message: "transport must be one of tcp, unix"}
	}
	if c.Endpoint == "" {
		return &probe.ConfigError{Field: "endpoint", Value: c.Endpoint, Message: "endpoint must not be empty"}
	}
	if c.WriteBufferSize < 0 || c.ReadBufferSize < 0 {
		return &probe.ConfigError{Field: "socket buffer", Value: fmt.Sprintf("%d/%d", c.WriteBufferSize, c.ReadBufferSize), Message: "socket buffer sizes must not be negative"}
	}
	return nil
}

// --------------------------------------------------------------------------
// Server configuration
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the probe server
type ServerConfig struct {
	Transport TransportConfig
	Probe     ProbeConfig

	// MetricsEndpoint is the address of the Prometheus endpoint, empty disables it
	MetricsEndpoint string
}

// Validate checks the configuration before the server starts
func (c *ServerConfig) Validate() error {
	if err := c.Transport.validate(); err != nil {
		return err
	}
	return c.Probe.validate()
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	addSection("Probe Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Transport", c.Transport.Name)
	addField("Metrics Endpoint", orDisabled(c.MetricsEndpoint))

	writeProbeSection(c.Probe, addSection, addField)
	writeSocketSection(c.Transport, addSection, addField)

	addSection("Logging")
	addField("Log Level", c.Probe.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters of the probe client
type ClientConfig struct {
	Transport TransportConfig
	Probe     ProbeConfig

	// Upload selects the command: true sends 'U', false sends 'D'
	Upload bool
	// Duration ends the transfer after the given time, 0 runs until a failure
	Duration time.Duration
}

// Validate checks the configuration before the client connects
func (c *ClientConfig) Validate() error {
	if err := c.Transport.validate(); err != nil {
		return err
	}
	if c.Duration < 0 {
		return &probe.ConfigError{Field: "duration", Value: c.Duration, Message: "duration must not be negative"}
	}
	return c.Probe.validate()
}

// Command returns the command the client sends
func (c *ClientConfig) Command() probe.Command {
	return probe.CommandFor(c.Upload)
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	addSection("Probe Client")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Transport", c.Transport.Name)
	addField("Command", c.Command().String())
	if c.Duration > 0 {
		addField("Duration", c.Duration.String())
	} else {
		addField("Duration", "until failure")
	}

	writeProbeSection(c.Probe, addSection, addField)
	writeSocketSection(c.Transport, addSection, addField)

	addSection("Logging")
	addField("Log Level", c.Probe.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ResolveEndpoint appends port to a TCP endpoint that has none
func ResolveEndpoint(endpoint string, port int) string {
	if _, _, err := net.SplitHostPort(endpoint); err == nil {
		return endpoint
	}
	host := strings.TrimSuffix(strings.TrimPrefix(endpoint, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func formatHelpers(sb *strings.Builder) (func(string), func(string, string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}

func writeProbeSection(c ProbeConfig, addSection func(string), addField func(string, string)) {
	addSection("Transfer")
	addField("Buffer Size", fmt.Sprintf("%d bytes (%s)", c.BufferSize, strings.Join(strings.Fields(probe.FormatRate(float64(c.BufferSize))), " ")))
	addField("I/O Timeout", c.Timeout.String())
	addField("Validate Payload", strconv.FormatBool(c.Validate))
}

func writeSocketSection(c TransportConfig, addSection func(string), addField func(string, string)) {
	addSection("Socket")
	addField("Write Buffer", orDefault(c.WriteBufferSize))
	addField("Read Buffer", orDefault(c.ReadBufferSize))
	if c.Name == "tcp" {
		addField("TCP No Delay", strconv.FormatBool(c.TCPNoDelay))
		addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSec))
		if c.TCPLingerSec >= 0 {
			addField("TCP Linger", fmt.Sprintf("%d sec", c.TCPLingerSec))
		} else {
			addField("TCP Linger", "os default")
		}
	}
}

func orDefault(size int) string {
	if size <= 0 {
		return "os default"
	}
	return fmt.Sprintf("%d bytes", size)
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}
