package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsJobs(t *testing.T) {
	pool := NewPool(4)

	var ran int64
	for i := 0; i < 20; i++ {
		err := pool.Submit(func() {
			atomic.AddInt64(&ran, 1)
		})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	}
	pool.StopWait()

	if ran != 20 {
		t.Errorf("Expected 20 jobs to run, got %d", ran)
	}
}

func TestPoolRecoversPanic(t *testing.T) {
	pool := NewPool(1)

	if err := pool.Submit(func() { panic("boom") }); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	var ran int64
	if err := pool.Submit(func() { atomic.AddInt64(&ran, 1) }); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	pool.StopWait()

	if ran != 1 {
		t.Error("Expected the pool to survive a panicking job")
	}
}

func TestPoolSubmitNil(t *testing.T) {
	pool := NewPool(1)
	defer pool.Stop()

	if err := pool.Submit(nil); err != nil {
		t.Errorf("Submit(nil) should be a no-op, got %v", err)
	}
}
