package parallel

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolExecuteAll(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	if p.Workers() != 4 {
		t.Errorf("Workers = %d, want 4", p.Workers())
	}

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}

	p.ExecuteAll(work)
	if got := counter.Load(); got != 100 {
		t.Errorf("executed %d items, want 100", got)
	}

	// Second batch on the same pool.
	p.ExecuteAll(work)
	if got := counter.Load(); got != 200 {
		t.Errorf("executed %d items total, want 200", got)
	}
}

func TestWorkerPoolDefaultWorkers(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers = %d, want >= 1", p.Workers())
	}
}

func TestWorkerPoolSubmit(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submitted work never ran")
	}

	p.Submit(nil) // must not panic
}

func TestWorkerPoolClose(t *testing.T) {
	p := NewWorkerPool(2)

	var counter atomic.Int64
	work := make([]func(), 50)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	p.ExecuteAll(work)

	p.Close()
	if p.IsRunning() {
		t.Error("pool still running after Close")
	}

	// Work after close is dropped, not executed.
	before := counter.Load()
	p.ExecuteAll(work)
	p.Submit(func() { counter.Add(1) })
	if got := counter.Load(); got != before {
		t.Errorf("closed pool executed work: %d -> %d", before, got)
	}

	p.Close() // second close is a no-op
}

func TestWorkerPoolUnevenLoad(t *testing.T) {
	// One slow item among many fast ones; stealing should still finish
	// everything.
	p := NewWorkerPool(4)
	defer p.Close()

	var counter atomic.Int64
	work := make([]func(), 64)
	for i := range work {
		if i == 0 {
			work[i] = func() {
				time.Sleep(20 * time.Millisecond)
				counter.Add(1)
			}
		} else {
			work[i] = func() { counter.Add(1) }
		}
	}

	p.ExecuteAll(work)
	if got := counter.Load(); got != 64 {
		t.Errorf("executed %d items, want 64", got)
	}
}
