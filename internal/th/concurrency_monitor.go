package th

import (
	"sync"
	"time"
)

// ConcurrencyMonitor measures the maximum concurrency level reached by goroutines.
// Each goroutine calls Inc() when it starts the measured section and Dec() when it leaves it.
// Inc() blocks until the level has been stable for the configured window, which gives every
// goroutine that is allowed to run a chance to enter before anyone leaves. This way peaks are
// not missed just because some goroutine finished early.
type ConcurrencyMonitor struct {
	cond    *sync.Cond
	current int
	max     int

	window time.Duration

	lastChangeAt time.Time
	timer        *time.Timer
	timerFired   bool
}

func NewConcurrencyMonitor(window time.Duration) *ConcurrencyMonitor {
	c := &ConcurrencyMonitor{
		cond:   sync.NewCond(&sync.Mutex{}),
		window: window,
	}

	c.timer = time.AfterFunc(1*time.Hour, func() {
		c.cond.L.Lock()
		defer c.cond.L.Unlock()

		c.timerFired = true
		c.cond.Broadcast()
	})

	return c
}

func (c *ConcurrencyMonitor) touch() {
	c.lastChangeAt = time.Now()
	if !c.timerFired {
		c.timer.Reset(c.window)
	}
}

func (c *ConcurrencyMonitor) Inc() {
	c.cond.L.Lock()
	defer c.cond.L.Unlock()

	c.touch()
	c.current++
	if c.max < c.current {
		c.max = c.current
	}

	// hold everyone until the level stops changing
	for !c.timerFired && time.Since(c.lastChangeAt) < c.window {
		c.cond.Wait()
	}
}

func (c *ConcurrencyMonitor) Dec() {
	c.cond.L.Lock()
	defer c.cond.L.Unlock()

	c.touch()
	c.current--
	c.cond.Broadcast()
}

func (c *ConcurrencyMonitor) Current() int {
	c.cond.L.Lock()
	defer c.cond.L.Unlock()

	return c.current
}

func (c *ConcurrencyMonitor) Max() int {
	c.cond.L.Lock()
	defer c.cond.L.Unlock()

	return c.max
}
