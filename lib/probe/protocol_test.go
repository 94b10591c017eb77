package probe

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeWrite writes data to w in a single call from a separate goroutine
func pipeWrite(w net.Conn, data []byte) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		_, err := w.Write(data)
		errCh <- err
	}()
	return errCh
}

func TestReadCommandValid(t *testing.T) {
	for _, cmd := range []Command{CmdUpload, CmdDownload} {
		t.Run(cmd.String(), func(t *testing.T) {
			a, b := net.Pipe()
			defer a.Close()
			defer b.Close()

			errCh := pipeWrite(a, []byte{byte(cmd)})

			got, err := ReadCommand(b, make([]byte, 64))
			require.NoError(t, err)
			assert.Equal(t, cmd, got)
			require.NoError(t, <-errCh)
		})
	}
}

func TestReadCommandUnknown(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	errCh := pipeWrite(a, []byte{'X'})

	_, err := ReadCommand(b, make([]byte, 64))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
	assert.Contains(t, err.Error(), "not understood")

	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, "read command", protoErr.Op)
	require.NoError(t, <-errCh)
}

// TestReadCommandLeavesPayload sends the command and the first payload in one
// write. Only the command byte may be consumed.
func TestReadCommandLeavesPayload(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	payload := NewFilledBuffer(64)
	errCh := pipeWrite(a, append([]byte{byte(CmdUpload)}, payload...))

	cmd, err := ReadCommand(b, make([]byte, 64))
	require.NoError(t, err)
	assert.Equal(t, CmdUpload, cmd)

	rest := make([]byte, len(payload))
	_, err = io.ReadFull(b, rest)
	require.NoError(t, err)
	assert.Equal(t, payload, rest)
	require.NoError(t, <-errCh)
}

func TestReadCommandEmpty(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	// peer closes before sending anything
	require.NoError(t, a.Close())

	_, err := ReadCommand(b, make([]byte, 64))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
	assert.True(t, errors.Is(err, io.EOF))
	assert.Contains(t, err.Error(), "unexpected command length 0")
}

// TestReadCommandSmallBuffer reads commands with buffers shorter than one byte and exactly one byte
func TestReadCommandSmallBuffer(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	errCh := pipeWrite(a, []byte("DU"))

	cmd, err := ReadCommand(b, make([]byte, 1))
	require.NoError(t, err)
	assert.Equal(t, CmdDownload, cmd)

	cmd, err = ReadCommand(b, nil)
	require.NoError(t, err)
	assert.Equal(t, CmdUpload, cmd)
	require.NoError(t, <-errCh)
}

func TestWriteCommand(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- WriteCommand(a, CmdDownload)
	}()

	buf := make([]byte, 8)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('D'), buf[0])
	require.NoError(t, <-errCh)
}

func TestWriteCommandClosed(t *testing.T) {
	a, b := net.Pipe()
	require.NoError(t, b.Close())
	defer a.Close()

	err := WriteCommand(a, CmdUpload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestCommandHelpers(t *testing.T) {
	assert.Equal(t, CmdUpload, CommandFor(true))
	assert.Equal(t, CmdDownload, CommandFor(false))

	assert.True(t, CmdUpload.Valid())
	assert.True(t, CmdDownload.Valid())
	assert.False(t, Command('X').Valid())

	assert.Equal(t, DirectionReceive, ResponderDirection(CmdUpload))
	assert.Equal(t, DirectionSend, ResponderDirection(CmdDownload))
	assert.Equal(t, DirectionSend, InitiatorDirection(CmdUpload))
	assert.Equal(t, DirectionReceive, InitiatorDirection(CmdDownload))
	assert.Equal(t, DirectionNone, ResponderDirection(Command('X')))
}
