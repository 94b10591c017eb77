// Package transport defines the connector interfaces the probe server and the
// probe client use to obtain connections. A transfer session itself only needs
// a net.Conn, so a transport is reduced to three operations: listening or
// connecting, and applying socket options to a fresh connection.
//
// Implementations:
//
//   - tcp: TCP sockets with optional no-delay, keep-alive, linger and socket
//     buffer tuning.
//
//   - unix: Unix domain sockets, useful to measure the local loopback path
//     without the TCP stack.
//
// The base package provides the per-I/O timeout wrapper shared by both.
package transport
