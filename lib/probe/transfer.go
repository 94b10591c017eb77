package probe

import (
	"encoding/binary"
	"io"
)

const (
	// FillByte is the value every payload byte carries
	FillByte byte = 0xAA
	// FillWord is FillByte replicated across one 8-byte word
	FillWord uint64 = 0xAAAA_AAAA_AAAA_AAAA
	// WordSize is the granularity of payload validation
	WordSize = 8
)

// NewFilledBuffer allocates a buffer of the given size filled with FillByte
func NewFilledBuffer(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = FillByte
	}
	return buf
}

// --------------------------------------------------------------------------
// Send
// --------------------------------------------------------------------------

// Send writes a buffer of bufferSize fill bytes to w over and over again.
// Every completed write adds the buffer length to counter. Send only returns
// when a write fails, the error is always an *IoError.
func Send(w io.Writer, bufferSize int, counter *ByteCounter) error {
	buf := NewFilledBuffer(bufferSize)

	for {
		if _, err := w.Write(buf); err != nil {
			return &IoError{Op: "send", Err: err}
		}
		counter.Add(len(buf))
	}
}

// --------------------------------------------------------------------------
// Receive
// --------------------------------------------------------------------------

// Receive reads full buffers of bufferSize bytes from r until a read fails.
// Every buffer adds its length to counter before it is (optionally) validated.
// A failed or short read returns an *IoError, a payload mismatch a *ValidationError.
func Receive(r io.Reader, bufferSize int, validate bool, counter *ByteCounter) error {
	buf := make([]byte, bufferSize)

	// absolute offset of buf[0] in the stream
	var offset int64

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return &IoError{Op: "receive", Err: err}
		}
		counter.Add(len(buf))

		if validate {
			if i, word, ok := ValidateBuffer(buf); !ok {
				return &ValidationError{Offset: offset + int64(i), Value: word}
			}
		}
		offset += int64(len(buf))
	}
}

// ValidateBuffer compares every 8-byte word of buf with FillWord. It returns
// the offset and value of the first mismatching word, or ok=true if all match.
// Words are decoded in the native byte order of this host. Trailing bytes that
// do not form a complete word are ignored.
func ValidateBuffer(buf []byte) (offset int, word uint64, ok bool) {
	for i := 0; i+WordSize <= len(buf); i += WordSize {
		if w := binary.NativeEndian.Uint64(buf[i : i+WordSize]); w != FillWord {
			return i, w, false
		}
	}
	return 0, 0, true
}
