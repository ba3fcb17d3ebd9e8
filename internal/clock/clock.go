// Package clock maps wall time onto the registry's tick-based time markers.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time marker
type Clock interface {
	Now() uint64
}

// TickClock counts fixed-length ticks since a genesis instant.
// Instants before genesis map to tick 0.
type TickClock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
}

func NewTickClock(genesis time.Time, interval time.Duration) *TickClock {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &TickClock{genesis: genesis, interval: interval, now: time.Now}
}

func (c *TickClock) Now() uint64 {
	elapsed := c.now().Sub(c.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / c.interval)
}

// Manual is a settable clock for tests and offline tooling
type Manual struct {
	mu   sync.Mutex
	tick uint64
}

func NewManual(tick uint64) *Manual {
	return &Manual{tick: tick}
}

func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}

// Advance moves the clock forward and returns the new tick
func (m *Manual) Advance(ticks uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick += ticks
	return m.tick
}
