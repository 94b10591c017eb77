package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatRate checks the fixed-width layout of rate strings
func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0    B"},
		{500, "500  B"},
		{999, "999  B"},
		{1000, "0.97 KB"},
		{1536, "1.5  KB"},
		{2048, "2    KB"},
		{10 * 1024 * 1024, "10   MB"},
		{123.456, "123  B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRate(tt.in), "FormatRate(%v)", tt.in)
	}
}

// TestFormatRateLargestSuffix makes sure huge values stay on the last suffix
func TestFormatRateLargestSuffix(t *testing.T) {
	got := FormatRate(1e30)
	assert.Contains(t, got, "YB")
}
