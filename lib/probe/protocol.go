package probe

import (
	"fmt"
	"io"
)

// --------------------------------------------------------------------------
// Command Definition
// --------------------------------------------------------------------------

// Command is the single byte an initiator sends right after connecting
type Command byte

const (
	CmdUpload   Command = 'U' // Initiator sends, responder receives
	CmdDownload Command = 'D' // Responder sends, initiator receives
)

// String returns the string representation of a Command
func (c Command) String() string {
	switch c {
	case CmdUpload:
		return "upload"
	case CmdDownload:
		return "download"
	default:
		return fmt.Sprintf("unknown(%#02x)", byte(c))
	}
}

// Valid reports whether c is one of the known commands
func (c Command) Valid() bool {
	return c == CmdUpload || c == CmdDownload
}

// CommandFor returns the command an initiator sends for the given direction
func CommandFor(upload bool) Command {
	if upload {
		return CmdUpload
	}
	return CmdDownload
}

// --------------------------------------------------------------------------
// Wire Functions
// --------------------------------------------------------------------------

// WriteCommand writes exactly one command byte
func WriteCommand(w io.Writer, cmd Command) error {
	n, err := w.Write([]byte{byte(cmd)})
	if err != nil {
		return &IoError{Op: "write command", Err: err}
	}
	if n != 1 {
		return &ProtocolError{Op: "write command", Message: fmt.Sprintf("unexpected command length %d", n)}
	}
	return nil
}

// ReadCommand reads exactly one byte from r and interprets it as a command.
// buf is the transfer buffer of the session, only its first byte is used.
// Everything the peer sent after the command stays in r as payload.
func ReadCommand(r io.Reader, buf []byte) (Command, error) {
	if len(buf) < 1 {
		buf = make([]byte, 1)
	}

	n, err := io.ReadFull(r, buf[:1])
	if n != 1 {
		return 0, &ProtocolError{
			Op:      "read command",
			Message: fmt.Sprintf("unexpected command length %d, expected U or D", n),
			Err:     err,
		}
	}

	cmd := Command(buf[0])
	if !cmd.Valid() {
		return cmd, &ProtocolError{
			Op:      "read command",
			Message: fmt.Sprintf("command %q not understood", buf[0]),
		}
	}
	return cmd, nil
}
