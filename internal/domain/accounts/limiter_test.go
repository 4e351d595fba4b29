package accounts

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func newClockLimiter(every time.Duration, burst int) (*Limiter, *time.Time) {
	l := NewLimiter(every, burst)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_DropsIdleBuckets(t *testing.T) {
	l, now := newClockLimiter(time.Minute, 5) // idle = 5m

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, 100, l.size())

	*now = now.Add(5 * time.Minute)
	assert.True(t, l.Allow("10.0.1.1"))
	assert.Equal(t, 1, l.size())
}

func TestLimiter_KeepsThrottledKeyUntilRefilled(t *testing.T) {
	l, now := newClockLimiter(time.Minute, 2)

	assert.True(t, l.Allow("ip"))
	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))

	// Otra IP dispara barridos, pero el bucket agotado sigue ahí.
	*now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("otra"))
	assert.False(t, l.Allow("ip"))
	assert.Equal(t, 2, l.size())

	*now = now.Add(time.Minute)
	assert.True(t, l.Allow("ip"))
}

func TestLimiter_DisabledAndNil(t *testing.T) {
	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("x"))

	l := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("x"))
	}
	assert.Equal(t, 0, l.size())
}
