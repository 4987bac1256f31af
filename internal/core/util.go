package core

// Drain consumes and discards all items from the channel, blocking until it is closed.
func Drain[A any](in <-chan A) {
	for range in {
	}
}

// DrainNB is a non-blocking version of Drain. It does draining in a separate goroutine.
func DrainNB[A any](in <-chan A) {
	if in == nil {
		return
	}
	go Drain(in)
}
