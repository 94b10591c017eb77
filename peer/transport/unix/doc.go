// Package unix implements the Unix domain socket transport of tprobe. The
// endpoint is the path of the socket file; the server removes a stale file
// before listening. Only the socket buffer sizes of common.TransportConfig
// apply, TCP options are ignored.
package unix
