package transport

import (
	"net"
	"time"

	"github.com/ValentinKolb/tprobe/peer/common"
)

// --------------------------------------------------------------------------
// Server Connector
// --------------------------------------------------------------------------

// IServerConnector is implemented by every transport the probe server can listen on
type IServerConnector interface {
	// Listen creates a listener on config.Endpoint
	Listen(config common.TransportConfig) (net.Listener, error)
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
	// UpgradeConnection applies the socket options of config to an accepted connection
	UpgradeConnection(conn net.Conn, config common.TransportConfig) error
}

// --------------------------------------------------------------------------
// Client Connector
// --------------------------------------------------------------------------

// IClientConnector is implemented by every transport the probe client can connect with
type IClientConnector interface {
	// Connect opens a connection to endpoint, giving up after timeout
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
	// UpgradeConnection applies the socket options of config to an established connection
	UpgradeConnection(conn net.Conn, config common.TransportConfig) error
}
