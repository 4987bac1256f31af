package th

import (
	"fmt"
	"strings"
	"sync"
)

func FromSlice[A any](slice []A) <-chan A {
	ch := make(chan A, len(slice))
	for _, x := range slice {
		ch <- x
	}
	close(ch)
	return ch
}

func FromRange(start, end int) <-chan int {
	ch := make(chan int)
	go func() {
		defer close(ch)
		for i := start; i < end; i++ {
			ch <- i
		}
	}()
	return ch
}

func ToSlice[A any](ch <-chan A) []A {
	var res []A
	for x := range ch {
		res = append(res, x)
	}
	return res
}

func DoConcurrentlyN(n int, f func(i int)) {
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(i)
		}()
	}

	wg.Wait()
}

// Recorder collects values from concurrent goroutines in the order they were added.
type Recorder[A any] struct {
	mu     sync.Mutex
	values []A
}

func (r *Recorder[A]) Add(x A) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, x)
}

func (r *Recorder[A]) Values() []A {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]A, len(r.values))
	copy(res, r.values)
	return res
}

// Name generates a test name.
// Works the same way as fmt.Sprint, but adds spaces between all arguments.
func Name(args ...any) string {
	res := fmt.Sprintln(args...)
	return strings.TrimSpace(res)
}
