// Package timectrl drives the tracker's update loop and provides the clock
// abstraction the rest of the system depends on, so catalog freshness and
// tick timing stay deterministic under test.
package timectrl

import (
	"sync"
	"time"
)

// Clock supplies the current wall-clock time. Components take a Clock
// rather than calling time.Now directly so tests can inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Mode describes how the Controller advances between ticks.
type Mode int

const (
	// RealTime waits out the tick interval on the wall clock.
	RealTime Mode = iota
	// Accelerated fires ticks back to back as fast as listeners can run,
	// still stepping the reported time by the tick interval.
	Accelerated
)

// Controller invokes registered tick listeners once per tick, never
// concurrently with themselves. It implements Clock, reporting the time of
// the most recent tick.
type Controller struct {
	mu      sync.RWMutex
	start   time.Time
	tick    time.Duration
	mode    Mode
	current time.Time

	listeners []func(time.Time)
}

// New constructs a controller starting at start with the given tick
// interval and mode.
func New(start time.Time, tick time.Duration, mode Mode) *Controller {
	return &Controller{
		start:   start,
		tick:    tick,
		mode:    mode,
		current: start,
	}
}

// Now returns the time of the most recent tick. Implements Clock.
func (c *Controller) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Tick returns the configured tick interval.
func (c *Controller) Tick() time.Duration { return c.tick }

// AddListener registers a callback invoked on every tick. Listeners must
// be registered before Run is called.
func (c *Controller) AddListener(fn func(time.Time)) {
	c.listeners = append(c.listeners, fn)
}

// Run advances the controller for the given duration in a separate
// goroutine and returns a channel closed when it finishes. A zero or
// negative duration runs until stop is closed.
func (c *Controller) Run(duration time.Duration, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		c.mu.Lock()
		now := c.start
		c.current = now
		c.mu.Unlock()

		var ticker *time.Ticker
		if c.mode == RealTime {
			ticker = time.NewTicker(c.tick)
			defer ticker.Stop()
		}

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			if c.mode == RealTime {
				select {
				case <-ticker.C:
				case <-stop:
					return
				}
			} else {
				select {
				case <-stop:
					return
				default:
				}
			}

			now = now.Add(c.tick)
			elapsed += c.tick

			c.mu.Lock()
			c.current = now
			c.mu.Unlock()

			for _, fn := range c.listeners {
				fn(now)
			}
		}
	}()
	return done
}
