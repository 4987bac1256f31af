package semaphore_test

import (
	"fmt"

	"github.com/friendsoftheweb/utils/semaphore"
)

func Example() {
	sem := semaphore.New(2)
	fmt.Println("Created:", sem)

	release1 := sem.Acquire()
	release2 := sem.Acquire()
	fmt.Println("Both permits taken:", sem)

	// A third caller would block here, TryAcquire reports it instead.
	if _, ok := sem.TryAcquire(); !ok {
		fmt.Println("TryAcquire failed:", sem)
	}

	// Release handles are safe to call more than once.
	release1()
	release1()
	fmt.Println("After double release:", sem)

	release2()
	fmt.Println("Final:", sem)

	// Output:
	// Created: Semaphore(0/2)
	// Both permits taken: Semaphore(2/2)
	// TryAcquire failed: Semaphore(2/2)
	// After double release: Semaphore(1/2)
	// Final: Semaphore(0/2)
}

func Example_unlimited() {
	sem := semaphore.New(0)

	for i := 0; i < 1000; i++ {
		sem.Acquire() // never blocks, the handle is a no-op
	}

	fmt.Println(sem)

	// Output:
	// Semaphore(unlimited)
}
