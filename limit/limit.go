// Package limit bounds how many invocations of a function may run at the same time.
//
// Note that this is concurrency limiting, not rate limiting: a limit of 1 still allows any number of
// calls per second, as long as they do not overlap.
//
// The wrappers returned by [Func0], [Func] and [Func2] have the same signature as the function they wrap
// and return its results and errors untouched. Each wrapper owns an independent [semaphore.Semaphore],
// so two wrappers never affect each other, even when they wrap the same function.
// Waiting callers are admitted in the order they arrived.
package limit

import (
	"github.com/friendsoftheweb/utils/semaphore"
)

// Limiter runs closures with at most n of them in flight.
// A Limiter with n <= 0 is unlimited.
type Limiter struct {
	sem *semaphore.Semaphore
}

// New creates a Limiter that allows at most n concurrent calls to [Limiter.Do].
func New(n int) *Limiter {
	return &Limiter{sem: semaphore.New(n)}
}

// Do waits for a free slot, calls f and returns its error unchanged.
// The slot is given back when f returns or panics.
func (l *Limiter) Do(f func() error) error {
	release := l.sem.Acquire()
	defer release()

	return f()
}

// Semaphore exposes the underlying semaphore, mostly for observability.
func (l *Limiter) Semaphore() *semaphore.Semaphore {
	return l.sem
}

// Func0 wraps a function without arguments. See [Func].
func Func0[R any](f func() (R, error), n int) func() (R, error) {
	sem := semaphore.New(n)

	return func() (R, error) {
		release := sem.Acquire()
		defer release()

		return f()
	}
}

// Func wraps f so that at most n calls to f run concurrently, no matter how many goroutines
// call the returned function. Callers over the limit block until a slot frees up.
// When n <= 0 no limit is applied.
//
//	fetch := limit.Func(func(id int) (*User, error) {
//		return api.GetUser(ctx, id)
//	}, 5)
//
//	// at most 5 GetUser calls are in flight here
//	for _, id := range ids {
//		go func() {
//			u, err := fetch(id)
//			results <- result{user: u, err: err}
//		}()
//	}
func Func[A, R any](f func(A) (R, error), n int) func(A) (R, error) {
	sem := semaphore.New(n)

	return func(a A) (R, error) {
		release := sem.Acquire()
		defer release()

		return f(a)
	}
}

// Func2 wraps a function of two arguments. See [Func].
func Func2[A, B, R any](f func(A, B) (R, error), n int) func(A, B) (R, error) {
	sem := semaphore.New(n)

	return func(a A, b B) (R, error) {
		release := sem.Acquire()
		defer release()

		return f(a, b)
	}
}
