package stream

import (
	"iter"
)

// FromSeq2 converts a value-error pairs sequence into a stream.
// Pairs with a non-nil error become error items.
func FromSeq2[A any](seq iter.Seq2[A, error]) Stream[A] {
	if seq == nil {
		return nil
	}

	out := make(chan Try[A])
	go func() {
		defer close(out)
		for val, err := range seq {
			if err != nil {
				out <- Try[A]{Error: err}
				continue
			}
			out <- Try[A]{Value: val}
		}
	}()
	return out
}

// ToSeq2 converts a stream into a sequence of value-error pairs.
//
// Unlike blocking consumers that stop at the first error, ToSeq2 yields every pair and lets the caller
// decide when to stop. When the loop exits early the rest of the stream is drained in the background.
func ToSeq2[A any](in Stream[A]) iter.Seq2[A, error] {
	return func(yield func(A, error) bool) {
		defer DrainNB(in)
		for x := range in {
			if !yield(x.Value, x.Error) {
				return
			}
		}
	}
}
