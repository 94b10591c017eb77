package probe

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"smallest", 8, false},
		{"default", 256 * 1024, false},
		{"zero", 0, true},
		{"negative", -8, true},
		{"not a multiple of 8", 12, true},
		{"odd", 1023, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SessionConfig{BufferSize: tt.size}.Check()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

// runPair runs Respond on one end of a pipe and Initiate on the other until
// the responder counted at least min bytes, then closes both ends
func runPair(t *testing.T, cmd Command, conf SessionConfig, min uint64) (respCmd Command, respErr, initErr error, respCounter, initCounter *ByteCounter) {
	t.Helper()

	a, b := net.Pipe()
	respCounter = NewByteCounter()
	initCounter = NewByteCounter()

	type respResult struct {
		cmd Command
		err error
	}
	respCh := make(chan respResult, 1)
	initCh := make(chan error, 1)

	go func() {
		c, err := Respond(b, conf, respCounter)
		respCh <- respResult{c, err}
	}()
	go func() {
		initCh <- Initiate(a, conf, cmd, initCounter)
	}()

	require.Eventually(t, func() bool {
		return respCounter.Load() >= min && initCounter.Load() >= min
	}, 5*time.Second, time.Millisecond)

	_ = a.Close()
	_ = b.Close()

	r := <-respCh
	return r.cmd, r.err, <-initCh, respCounter, initCounter
}

// TestRespondUpload checks that 'U' makes the responder receive
func TestRespondUpload(t *testing.T) {
	conf := SessionConfig{BufferSize: 1024, Validate: true}
	cmd, respErr, initErr, _, _ := runPair(t, CmdUpload, conf, 8*1024)

	assert.Equal(t, CmdUpload, cmd)
	assert.True(t, errors.Is(respErr, ErrIO), "responder: %v", respErr)
	assert.False(t, errors.Is(respErr, ErrValidation))
	assert.True(t, errors.Is(initErr, ErrIO), "initiator: %v", initErr)

	var ioErr *IoError
	require.True(t, errors.As(respErr, &ioErr))
	assert.Equal(t, "receive", ioErr.Op)
	require.True(t, errors.As(initErr, &ioErr))
	assert.Equal(t, "send", ioErr.Op)
}

// TestRespondDownload checks that 'D' makes the responder send
func TestRespondDownload(t *testing.T) {
	conf := SessionConfig{BufferSize: 1024, Validate: true}
	cmd, respErr, initErr, _, _ := runPair(t, CmdDownload, conf, 8*1024)

	assert.Equal(t, CmdDownload, cmd)

	var ioErr *IoError
	require.True(t, errors.As(respErr, &ioErr))
	assert.Equal(t, "send", ioErr.Op)
	require.True(t, errors.As(initErr, &ioErr))
	assert.Equal(t, "receive", ioErr.Op)
	assert.False(t, errors.Is(initErr, ErrValidation))
}

// TestRespondUnknownCommand sends 'X' and expects no bytes to be counted
func TestRespondUnknownCommand(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_, _ = a.Write([]byte{'X'})
	}()

	counter := NewByteCounter()
	cmd, err := Respond(b, SessionConfig{BufferSize: 64}, counter)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
	assert.Equal(t, Command(0), cmd)
	assert.Equal(t, uint64(0), counter.Load())
}

// TestRespondCorruptedUpload sends 'U' followed by a buffer with one flipped byte
func TestRespondCorruptedUpload(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	const size = 64
	payload := NewFilledBuffer(size)
	payload[13] = 0x00

	go func() {
		if _, err := a.Write([]byte{byte(CmdUpload)}); err != nil {
			return
		}
		_, _ = a.Write(NewFilledBuffer(size))
		_, _ = a.Write(payload)
	}()

	cmd, err := Respond(b, SessionConfig{BufferSize: size, Validate: true}, NewByteCounter())
	assert.Equal(t, CmdUpload, cmd)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "expected validation error, got %v", err)
	assert.Equal(t, int64(size+8), valErr.Offset)
}

// TestRespondCommandWithPayload delivers the command and the upload payload in a
// single chunk, as a sender writing right after the command does on TCP
func TestRespondCommandWithPayload(t *testing.T) {
	const size = 64
	stream := append([]byte{byte(CmdUpload)}, NewFilledBuffer(3*size)...)
	conn := struct {
		io.Reader
		io.Writer
	}{bytes.NewReader(stream), io.Discard}

	counter := NewByteCounter()
	cmd, err := Respond(conn, SessionConfig{BufferSize: size, Validate: true}, counter)

	assert.Equal(t, CmdUpload, cmd)
	assert.False(t, errors.Is(err, ErrProtocol), "command merged with payload: %v", err)
	assert.False(t, errors.Is(err, ErrValidation), "%v", err)
	assert.True(t, errors.Is(err, io.EOF), "%v", err)
	assert.Equal(t, uint64(3*size), counter.Load())
}

func TestRespondInvalidConfig(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	_, err := Respond(b, SessionConfig{BufferSize: 10}, NewByteCounter())
	assert.True(t, errors.Is(err, ErrConfig))

	err = Initiate(a, SessionConfig{BufferSize: 10}, CmdUpload, NewByteCounter())
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestInitiateInvalidCommand(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	err := Initiate(a, SessionConfig{BufferSize: 64}, Command('X'), NewByteCounter())
	assert.True(t, errors.Is(err, ErrProtocol))
}

func TestResultString(t *testing.T) {
	r := Result{Peer: "127.0.0.1:1", Command: CmdUpload, Direction: DirectionReceive, Bytes: 64}
	assert.False(t, r.Failed())
	assert.Contains(t, r.String(), "status=ok")

	r.Err = &IoError{Op: "receive", Err: errors.New("boom")}
	assert.True(t, r.Failed())
	assert.Contains(t, r.String(), "boom")
}
