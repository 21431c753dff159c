package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		base     time.Duration
		want     time.Duration
	}{
		{"first retry", 1, time.Second, 2 * time.Second},
		{"second retry", 2, time.Second, 4 * time.Second},
		{"third retry", 3, time.Second, 8 * time.Second},
		{"larger base", 2, 5 * time.Second, 20 * time.Second},
		{"capped at fifteen minutes", 12, time.Second, 15 * time.Minute},
		{"zero attempts clamps to one", 0, time.Second, 2 * time.Second},
		{"negative attempts clamps to one", -3, time.Second, 2 * time.Second},
		{"huge attempts do not overflow", 500, time.Second, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Backoff(tt.attempts, tt.base))
		})
	}
}
