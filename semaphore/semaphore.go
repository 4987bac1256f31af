// Package semaphore provides a counting semaphore that admits waiters in strict FIFO order.
//
// Unlike a semaphore built on a buffered channel, this one never lets a newcomer overtake goroutines
// that are already waiting, and every acquisition returns its own [Release] handle, which can be called
// any number of times but gives the permit back only once.
//
// There is no cancellation. A goroutine blocked in [Semaphore.Acquire] stays queued until it is admitted,
// and a holder that never calls its release handle keeps the permit forever. Callers that need a deadline
// must build it on top, for example by acquiring in a separate goroutine and releasing once admitted.
package semaphore

import (
	"fmt"
	"sync"
)

// Release gives a permit back to the semaphore it came from.
// Only the first call has an effect, subsequent calls are no-ops.
type Release func()

func noopRelease() {}

// Semaphore is a counting semaphore with a FIFO wait queue.
//
// A Semaphore with capacity <= 0 is unlimited: it admits everyone immediately and hands out no-op
// release handles. The nil *Semaphore behaves the same way.
//
// A Semaphore must not be copied after first use.
type Semaphore struct {
	mu       sync.Mutex
	capacity int
	inFlight int
	queue    []chan struct{}
}

// New creates a semaphore that admits at most capacity holders at once.
// Zero or negative capacity means unlimited.
func New(capacity int) *Semaphore {
	return &Semaphore{capacity: capacity}
}

func (s *Semaphore) unlimited() bool {
	return s == nil || s.capacity <= 0
}

// Acquire blocks until a permit is granted and returns the handle that gives it back.
//
// Requests are served in the order they entered Acquire. Typical usage:
//
//	release := sem.Acquire()
//	defer release()
//	// ... do work ...
func (s *Semaphore) Acquire() Release {
	if s.unlimited() {
		return noopRelease
	}

	ready := make(chan struct{})

	s.mu.Lock()
	s.queue = append(s.queue, ready)
	s.admit()
	s.mu.Unlock()

	<-ready
	return s.releaser()
}

// TryAcquire acquires a permit only if one is free and nobody is waiting for it.
// It never blocks. On failure it returns a nil Release and false.
func (s *Semaphore) TryAcquire() (Release, bool) {
	if s.unlimited() {
		return noopRelease, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) > 0 || s.inFlight >= s.capacity {
		return nil, false
	}

	s.inFlight++
	return s.releaser(), true
}

func (s *Semaphore) releaser() Release {
	var once sync.Once
	return func() {
		once.Do(s.release)
	}
}

func (s *Semaphore) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	s.admit()
}

// admit grants permits to the head of the queue while capacity allows.
// Must be called with mu held.
func (s *Semaphore) admit() {
	for s.inFlight < s.capacity && len(s.queue) > 0 {
		head := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]

		s.inFlight++
		close(head)
	}
}

// Capacity returns the maximum number of concurrent holders, or 0 for an unlimited semaphore.
func (s *Semaphore) Capacity() int {
	if s.unlimited() {
		return 0
	}
	return s.capacity
}

// InFlight returns the number of permits currently held.
// Unlimited semaphores do not track holders and always report 0.
func (s *Semaphore) InFlight() int {
	if s.unlimited() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Waiting returns the number of goroutines blocked in Acquire.
func (s *Semaphore) Waiting() int {
	if s.unlimited() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// String returns "Semaphore(inFlight/capacity)" or "Semaphore(unlimited)".
func (s *Semaphore) String() string {
	if s.unlimited() {
		return "Semaphore(unlimited)"
	}
	return fmt.Sprintf("Semaphore(%d/%d)", s.InFlight(), s.capacity)
}
