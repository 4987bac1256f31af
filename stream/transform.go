package stream

import (
	"github.com/friendsoftheweb/utils/semaphore"
)

// OrderedMap applies f to each item of the input stream with at most n calls in flight and writes
// the results to the output stream in the same order as the items were read.
// Values of n below 1 are treated as 1.
//
// Errors from the input stream are forwarded to the output at their original position,
// and errors returned by f replace the corresponding item. Neither stops the processing.
func OrderedMap[A, B any](in Stream[A], n int, f func(A) (B, error)) Stream[B] {
	if in == nil {
		return nil
	}
	if n < 1 {
		n = 1
	}

	out := make(chan Try[B])

	// Each item gets a one-element slot. Slots are queued in input order,
	// so the writer below emits results in that order no matter which call finishes first.
	slots := make(chan chan Try[B], n)
	sem := semaphore.New(n)

	go func() {
		defer close(slots)

		for a := range in {
			release := sem.Acquire()

			slot := make(chan Try[B], 1)
			slots <- slot

			go func() {
				defer release()

				if a.Error != nil {
					slot <- Try[B]{Error: a.Error}
					return
				}

				b, err := f(a.Value)
				if err != nil {
					slot <- Try[B]{Error: err}
					return
				}
				slot <- Try[B]{Value: b}
			}()
		}
	}()

	go func() {
		defer close(out)
		for slot := range slots {
			out <- <-slot
		}
	}()

	return out
}
