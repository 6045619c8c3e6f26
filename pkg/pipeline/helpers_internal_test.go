package pipeline

import (
	"context"
	"testing"
)

// feedInts sends 0..total-1 on the returned channel. When cancel is not nil it
// is called just before the value cancelAt is sent.
func feedInts(t *testing.T, total, cancelAt int, cancel context.CancelFunc) chan int {
	t.Helper()

	ch := make(chan int)
	go func() {
		defer close(ch)
		for i := range total {
			if cancel != nil && i == cancelAt {
				cancel()
			}
			ch <- i
		}
	}()

	return ch
}

func drainInts(t *testing.T, ch <-chan int) []int {
	t.Helper()

	got := []int{}
	for v := range ch {
		got = append(got, v)
	}

	return got
}
