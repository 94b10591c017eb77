package probe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteCounter(t *testing.T) {
	c := NewByteCounter()
	assert.Equal(t, uint64(0), c.Load())

	c.Add(8)
	c.Add(16)
	assert.Equal(t, uint64(24), c.Load())

	c.Reset()
	assert.Equal(t, uint64(0), c.Load())
}

// TestByteCounterConcurrent adds from many goroutines at once
func TestByteCounterConcurrent(t *testing.T) {
	c := NewByteCounter()

	const workers = 8
	const adds = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < adds; j++ {
				c.Add(8)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*adds*8), c.Load())
}
