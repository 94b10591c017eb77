package base

import (
	"net"
	"time"
)

// timeoutConn refreshes the read or write deadline before each I/O call
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

// WithIOTimeout wraps conn so that every Read and Write fails after timeout
// without progress. A non-positive timeout returns conn unchanged.
func WithIOTimeout(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &timeoutConn{Conn: conn, timeout: timeout}
}

func (c *timeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *timeoutConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// SetSocketBuffers applies the socket buffer sizes to conn if it supports them.
// A size of 0 keeps the OS default.
func SetSocketBuffers(conn net.Conn, writeBufferSize, readBufferSize int) error {
	type bufferSetter interface {
		SetWriteBuffer(bytes int) error
		SetReadBuffer(bytes int) error
	}

	setter, ok := conn.(bufferSetter)
	if !ok {
		return nil // nothing to upgrade
	}

	if writeBufferSize > 0 {
		if err := setter.SetWriteBuffer(writeBufferSize); err != nil {
			return err
		}
	}
	if readBufferSize > 0 {
		if err := setter.SetReadBuffer(readBufferSize); err != nil {
			return err
		}
	}
	return nil
}
