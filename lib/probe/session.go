package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("probe")

// --------------------------------------------------------------------------
// Session Configuration
// --------------------------------------------------------------------------

// SessionConfig holds the local parameters of a session. They are never
// exchanged with the peer.
type SessionConfig struct {
	// BufferSize is the size of every read and write, a positive multiple of WordSize
	BufferSize int
	// Validate enables payload validation on the receiving side
	Validate bool
	// OnCommand, if set, is called by Respond once a valid command was read
	OnCommand func(cmd Command)
}

// Check asserts the buffer size invariant
func (c SessionConfig) Check() error {
	if c.BufferSize <= 0 {
		return &ConfigError{Field: "buffer-size", Value: c.BufferSize, Message: "buffer size must be positive"}
	}
	if c.BufferSize%WordSize != 0 {
		return &ConfigError{Field: "buffer-size", Value: c.BufferSize, Message: fmt.Sprintf("buffer size must be a multiple of %d", WordSize)}
	}
	return nil
}

// --------------------------------------------------------------------------
// Direction
// --------------------------------------------------------------------------

// Direction is the role a peer plays in the transfer loop
type Direction int

const (
	DirectionNone Direction = iota
	DirectionSend
	DirectionReceive
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case DirectionSend:
		return "send"
	case DirectionReceive:
		return "receive"
	default:
		return "none"
	}
}

// ResponderDirection returns the direction of the responding peer for cmd
func ResponderDirection(cmd Command) Direction {
	switch cmd {
	case CmdUpload:
		return DirectionReceive
	case CmdDownload:
		return DirectionSend
	default:
		return DirectionNone
	}
}

// InitiatorDirection returns the direction of the initiating peer for cmd
func InitiatorDirection(cmd Command) Direction {
	switch cmd {
	case CmdUpload:
		return DirectionSend
	case CmdDownload:
		return DirectionReceive
	default:
		return DirectionNone
	}
}

// --------------------------------------------------------------------------
// Session Result
// --------------------------------------------------------------------------

// Result is the terminal outcome of one session
type Result struct {
	Peer      string
	Command   Command
	Direction Direction
	Bytes     uint64
	Start     time.Time
	Duration  time.Duration
	// Err is nil if the session ended as expected
	Err error
}

// Failed reports whether the session ended with an error
func (r Result) Failed() bool {
	return r.Err != nil
}

// String returns a one-line summary of the result
func (r Result) String() string {
	status := "ok"
	if r.Err != nil {
		status = r.Err.Error()
	}
	return fmt.Sprintf("peer=%s cmd=%s dir=%s bytes=%d duration=%s status=%s",
		r.Peer, r.Command, r.Direction, r.Bytes, r.Duration.Round(time.Millisecond), status)
}

// --------------------------------------------------------------------------
// Session Protocol
// --------------------------------------------------------------------------

// Respond runs the responding side of a session on conn: it reads the command
// of the initiator and then sends or receives until the transfer fails.
// The returned command is zero if no valid command was read.
func Respond(conn io.ReadWriter, conf SessionConfig, counter *ByteCounter) (Command, error) {
	if err := conf.Check(); err != nil {
		return 0, err
	}

	buf := make([]byte, conf.BufferSize)
	cmd, err := ReadCommand(conn, buf)
	if err != nil {
		return 0, err
	}
	if conf.OnCommand != nil {
		conf.OnCommand(cmd)
	}

	switch ResponderDirection(cmd) {
	case DirectionReceive:
		Logger.Infof("receiving - peer sent upload '%c' command", byte(cmd))
		return cmd, Receive(conn, conf.BufferSize, conf.Validate, counter)
	default:
		Logger.Infof("sending - peer sent download '%c' command", byte(cmd))
		return cmd, Send(conn, conf.BufferSize, counter)
	}
}

// Initiate runs the initiating side of a session on conn: it writes cmd and
// then sends or receives until the transfer fails.
func Initiate(conn io.ReadWriter, conf SessionConfig, cmd Command, counter *ByteCounter) error {
	if err := conf.Check(); err != nil {
		return err
	}
	if !cmd.Valid() {
		return &ProtocolError{Op: "write command", Message: fmt.Sprintf("command %s not understood", cmd)}
	}

	Logger.Infof("requesting %s", cmd)
	if err := WriteCommand(conn, cmd); err != nil {
		return err
	}

	if InitiatorDirection(cmd) == DirectionSend {
		return Send(conn, conf.BufferSize, counter)
	}
	return Receive(conn, conf.BufferSize, conf.Validate, counter)
}
