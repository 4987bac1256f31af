package stream

import (
	"github.com/friendsoftheweb/utils/internal/core"
)

// Try is a container for a value or an error.
type Try[A any] struct {
	Value A
	Error error
}

// Stream is a channel of [Try] containers.
type Stream[A any] = <-chan Try[A]

// FromSlice converts a slice into a stream.
// If err is not nil the function returns a stream with a single error.
//
// Such function signature allows concise wrapping of functions that return a slice and an error:
//
//	ids := stream.FromSlice(api.ListUserIDs(ctx))
func FromSlice[A any](slice []A, err error) Stream[A] {
	if err != nil {
		out := make(chan Try[A], 1)
		out <- Try[A]{Error: err}
		close(out)
		return out
	}

	out := make(chan Try[A], len(slice))
	for _, a := range slice {
		out <- Try[A]{Value: a}
	}
	close(out)
	return out
}

// FromChan converts a regular channel into a stream.
// If err is not nil it is sent first, followed by the values.
// Either values or err can be nil, but not both simultaneously.
func FromChan[A any](values <-chan A, err error) Stream[A] {
	if values == nil && err == nil {
		return nil
	}

	out := make(chan Try[A])
	go func() {
		defer close(out)

		if err != nil {
			out <- Try[A]{Error: err}
		}

		for x := range values {
			out <- Try[A]{Value: x}
		}
	}()

	return out
}

// Drain consumes and discards all items from a stream, blocking until it is closed.
func Drain[A any](in <-chan A) {
	core.Drain(in)
}

// DrainNB is a non-blocking version of [Drain]. It does draining in a separate goroutine.
func DrainNB[A any](in <-chan A) {
	core.DrainNB(in)
}
