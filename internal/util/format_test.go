package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatProcessingDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: "—"},
		{name: "negative", duration: -time.Second, expected: "—"},
		{name: "sub-millisecond kept exact", duration: 250 * time.Microsecond, expected: "250µs"},
		{name: "truncated to milliseconds", duration: 2*time.Second + 345*time.Millisecond + 600*time.Microsecond, expected: "2.345s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatProcessingDuration(tt.duration))
		})
	}
}
