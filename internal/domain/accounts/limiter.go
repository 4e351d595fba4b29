package accounts

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter reparte un token bucket por clave (la IP del cliente).
// Los buckets sin uso durante idle (lo que tarda uno en rellenarse) se descartan.
type Limiter struct {
	mu        sync.Mutex
	every     time.Duration
	burst     int
	idle      time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time

	now func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLimiter: every <= 0 desactiva el límite.
func NewLimiter(every time.Duration, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst),
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

func (l *Limiter) Allow(key string) bool {
	if l == nil || l.every <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// sweep borra buckets inactivos; como mucho una pasada por periodo idle.
// Un bucket inactivo ese tiempo ya está lleno, así que borrarlo no regala intentos.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, k)
		}
	}
}
