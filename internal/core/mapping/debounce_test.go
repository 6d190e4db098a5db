package mapping_test

import (
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/unirenta/internal/core/mapping"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	done := make(chan struct{}, 10)

	d := mapping.NewDebouncer(30*time.Millisecond, func(v int) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
		done <- struct{}{}
	})

	for i := 1; i <= 5; i++ {
		d.Trigger(i)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
	// Give a stray second run the chance to show up.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one run, got %d (%v)", len(calls), calls)
	}
	if calls[0] != 5 {
		t.Errorf("expected the last value 5, got %d", calls[0])
	}
}

func TestDebouncer_SeparateQuietPeriods(t *testing.T) {
	runs := make(chan int, 10)
	d := mapping.NewDebouncer(20*time.Millisecond, func(v int) { runs <- v })

	d.Trigger(1)
	if got := <-runs; got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	d.Trigger(2)
	if got := <-runs; got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	runs := make(chan int, 1)
	d := mapping.NewDebouncer(20*time.Millisecond, func(v int) { runs <- v })

	d.Trigger(1)
	if !d.Pending() {
		t.Fatal("expected a pending run")
	}
	d.Stop()
	if d.Pending() {
		t.Fatal("expected no pending run after Stop")
	}

	select {
	case v := <-runs:
		t.Fatalf("stopped debouncer ran with %d", v)
	case <-time.After(80 * time.Millisecond):
	}
}
