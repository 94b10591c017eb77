// Package base provides helpers shared by all transport implementations.
//
// Every session applies the configured I/O timeout to each single read and
// write instead of to the connection as a whole. net.Conn only supports
// absolute deadlines, so WithIOTimeout wraps a connection and moves the
// matching deadline forward before every call.
package base
