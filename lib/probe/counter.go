package probe

import (
	"go.uber.org/atomic"
)

// ByteCounter counts the bytes transferred during one session.
// Within a session it only ever increases, Reset starts the next one.
type ByteCounter struct {
	n *atomic.Uint64
}

// NewByteCounter returns a counter starting at zero
func NewByteCounter() *ByteCounter {
	return &ByteCounter{n: atomic.NewUint64(0)}
}

// Add increases the counter by n bytes
func (c *ByteCounter) Add(n int) {
	c.n.Add(uint64(n))
}

// Load returns the number of bytes counted since the last reset
func (c *ByteCounter) Load() uint64 {
	return c.n.Load()
}

// Reset sets the counter back to zero
func (c *ByteCounter) Reset() {
	c.n.Store(0)
}
