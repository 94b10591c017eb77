package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/tprobe/lib/probe"
	"github.com/ValentinKolb/tprobe/peer/common"
	"github.com/ValentinKolb/tprobe/peer/transport"
	"github.com/ValentinKolb/tprobe/peer/transport/tcp"
	"github.com/ValentinKolb/tprobe/peer/transport/unix"
	units "github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Flags
// --------------------------------------------------------------------------

// SetupProbeFlags adds the flags shared by serve and connect to a command
func SetupProbeFlags(cmd *cobra.Command, defaultEndpoint string) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, defaultEndpoint, WrapString("The address to listen on or to connect to (e.g. 0.0.0.0:5150, /tmp/tprobe.sock, ...)"))

	key = "timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultTimeout, WrapString("Timeout of connecting and of every single read and write (e.g. 5s, 500ms)"))

	key = "buffer-size"
	cmd.PersistentFlags().StringP(key, "B", "256k", WrapString("Size of every read and write, must be a multiple of 8 (e.g. 64k, 1m)"))

	key = "validate"
	cmd.PersistentFlags().BoolP(key, "e", false, WrapString("Check that every received word carries the fill pattern 0xAA"))

	key = "write-buffer"
	cmd.PersistentFlags().String(key, "0", WrapString("The size of the socket write buffer (0 keeps the OS default)"))

	key = "read-buffer"
	cmd.PersistentFlags().String(key, "0", WrapString("The size of the socket read buffer (0 keeps the OS default)"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds, 0 disables it (only for tcp)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time in seconds, -1 keeps the OS default (only for tcp)"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// InitConfig initializes configuration from env files and environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tprobe")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetSize reads a size flag such as 256k, 1m or 512kb (binary units) from viper
func GetSize(key string) (int, error) {
	value := strings.TrimSpace(viper.GetString(key))
	size, err := units.RAMInBytes(value)
	if err != nil {
		return 0, &probe.ConfigError{Field: key, Value: value, Message: err.Error()}
	}
	return int(size), nil
}

// getTransportConfig reads the transport configuration from viper
func getTransportConfig(endpoint string) (common.TransportConfig, error) {
	writeBuffer, err := GetSize("write-buffer")
	if err != nil {
		return common.TransportConfig{}, err
	}
	readBuffer, err := GetSize("read-buffer")
	if err != nil {
		return common.TransportConfig{}, err
	}

	return common.TransportConfig{
		Name:     viper.GetString("transport"),
		Endpoint: endpoint,
		SocketConf: common.SocketConf{
			WriteBufferSize: writeBuffer,
			ReadBufferSize:  readBuffer,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		},
	}, nil
}

// getProbeConfig reads the transfer configuration from viper
func getProbeConfig() (common.ProbeConfig, error) {
	bufferSize, err := GetSize("buffer-size")
	if err != nil {
		return common.ProbeConfig{}, err
	}

	return common.ProbeConfig{
		Timeout:    viper.GetDuration("timeout"),
		BufferSize: bufferSize,
		Validate:   viper.GetBool("validate"),
		LogLevel:   viper.GetString("log-level"),
	}, nil
}

// GetServerConfig reads the server configuration from viper and validates it
func GetServerConfig() (*common.ServerConfig, error) {
	transportConf, err := getTransportConfig(viper.GetString("endpoint"))
	if err != nil {
		return nil, err
	}
	probeConf, err := getProbeConfig()
	if err != nil {
		return nil, err
	}

	conf := &common.ServerConfig{
		Transport:       transportConf,
		Probe:           probeConf,
		MetricsEndpoint: viper.GetString("metrics-endpoint"),
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// GetClientConfig reads the client configuration from viper and validates it.
// TCP endpoints without a port get the value of the port flag.
func GetClientConfig() (*common.ClientConfig, error) {
	endpoint := viper.GetString("endpoint")
	if viper.GetString("transport") == "tcp" {
		endpoint = common.ResolveEndpoint(endpoint, viper.GetInt("port"))
	}

	transportConf, err := getTransportConfig(endpoint)
	if err != nil {
		return nil, err
	}
	probeConf, err := getProbeConfig()
	if err != nil {
		return nil, err
	}

	conf := &common.ClientConfig{
		Transport: transportConf,
		Probe:     probeConf,
		Upload:    viper.GetBool("upload"),
		Duration:  viper.GetDuration("duration"),
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// --------------------------------------------------------------------------
// Transports
// --------------------------------------------------------------------------

// GetServerConnector creates the server connector based on configuration
func GetServerConnector() (transport.IServerConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPServerConnector(), nil
	case "unix":
		return unix.NewUnixServerConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetClientConnector creates the client connector based on configuration
func GetClientConnector() (transport.IClientConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientConnector(), nil
	case "unix":
		return unix.NewUnixClientConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}
