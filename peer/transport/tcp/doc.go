// Package tcp implements the TCP transport of tprobe. It provides concrete
// implementations of the transport package's connector interfaces.
//
// Key Components:
//
//   - serverConnector: TCP implementation of transport.IServerConnector
//
//   - clientConnector: TCP implementation of transport.IClientConnector
//
// Both connectors share upgradeConnection, which applies TCP_NODELAY, the
// socket buffer sizes, keep-alive and linger from common.TransportConfig.
package tcp
