package probe

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Sentinels for the error categories of a session
var (
	ErrProtocol   = errors.New("protocol error")
	ErrIO         = errors.New("io error")
	ErrValidation = errors.New("validation error")
	ErrConfig     = errors.New("config error")
)

// --------------------------------------------------------------------------
// Protocol Errors
// --------------------------------------------------------------------------

// ProtocolError is returned when the initial command exchange fails
type ProtocolError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error during %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("protocol error during %s: %s", e.Op, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// --------------------------------------------------------------------------
// I/O Errors
// --------------------------------------------------------------------------

// IoError wraps a transport failure (timeout, reset, closed connection, ...)
type IoError struct {
	Op   string
	Addr string
	Err  error
}

func (e *IoError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("io error during %s to %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("io error during %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

func (e *IoError) Is(target error) bool {
	return target == ErrIO
}

// --------------------------------------------------------------------------
// Validation Errors
// --------------------------------------------------------------------------

// ValidationError reports the first received word that does not match FillWord.
// Value is decoded in the byte order of the receiving host.
type ValidationError struct {
	Offset int64
	Value  uint64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error at offset %d: got %#016x instead of %#016x - there might be an endian problem on this arch",
		e.Offset, e.Value, FillWord)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// --------------------------------------------------------------------------
// Config Errors
// --------------------------------------------------------------------------

// ConfigError is returned by configuration validation, before any session starts
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %s='%v': %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// IsDisconnect reports whether err was caused by the peer (or the local side)
// closing the connection, as opposed to a timeout or another failure
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// IsTimeout reports whether err was caused by an expired I/O deadline
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
