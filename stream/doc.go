// Package stream provides the channel plumbing used to feed row sources: [Try] containers,
// conversions between channels and iterators, and an order-preserving concurrent map.
//
// # Streams and Try containers
//
// In this package, a stream refers to a channel of [Try] containers. A Try container is a simple struct that
// holds a value and an error. Errors travel down the stream as regular items, so a consumer sees them
// exactly at the position where they happened.
//
// # Concurrency
//
// [OrderedMap] runs the user function with at most n calls in flight. Admission goes through a FIFO
// [github.com/friendsoftheweb/utils/semaphore.Semaphore], so items start in input order and results are
// written to the output in input order as well. This makes it suitable for fetching CSV rows in parallel
// while still producing them in a stable order.
//
// # Early exit
//
// A consumer that stops reading before the end of a stream must drain it, otherwise the goroutines feeding
// it stay blocked forever. [ToSeq2] does this automatically when the loop body breaks. For manual loops
// add a deferred call to [DrainNB]:
//
//	defer stream.DrainNB(results)
//
//	for res := range results {
//		if res.Error != nil {
//			return res.Error
//		}
//		// process res.Value
//	}
package stream
