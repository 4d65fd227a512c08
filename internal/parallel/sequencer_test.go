package parallel

import (
	"sync"
	"testing"
	"time"
)

func TestSequencerInOrder(t *testing.T) {
	s := NewSequencer()

	var order []int
	for i := 0; i < 5; i++ {
		ticket := s.Ticket()
		n := i
		s.Done(ticket, func() { order = append(order, n) })
	}
	s.Wait()

	for i, n := range order {
		if n != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestSequencerOutOfOrder(t *testing.T) {
	s := NewSequencer()

	t0 := s.Ticket()
	t1 := s.Ticket()
	t2 := s.Ticket()

	var order []int

	// Complete backwards: nothing may run until ticket 0 lands.
	s.Done(t2, func() { order = append(order, 2) })
	if len(order) != 0 {
		t.Fatal("ticket 2 applied before ticket 0")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending())
	}

	s.Done(t1, func() { order = append(order, 1) })
	if len(order) != 0 {
		t.Fatal("ticket 1 applied before ticket 0")
	}

	s.Done(t0, func() { order = append(order, 0) })

	s.Wait()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSequencerNilApply(t *testing.T) {
	s := NewSequencer()
	ticket := s.Ticket()
	s.Done(ticket, nil) // failed render completes with a no-op
	s.Wait()
}

func TestSequencerConcurrent(t *testing.T) {
	s := NewSequencer()
	p := NewWorkerPool(4)
	defer p.Close()

	const jobs = 200
	results := make([]int, 0, jobs)
	var mu sync.Mutex

	for i := 0; i < jobs; i++ {
		ticket := s.Ticket()
		n := i
		p.Submit(func() {
			// Render concurrently, apply in order.
			s.Done(ticket, func() {
				mu.Lock()
				results = append(results, n)
				mu.Unlock()
			})
		})
	}

	s.Wait()

	if len(results) != jobs {
		t.Fatalf("applied %d, want %d", len(results), jobs)
	}
	for i, n := range results {
		if n != i {
			t.Fatalf("results[%d] = %d, out of order", i, n)
		}
	}
}

func TestSequencerWaitIdle(t *testing.T) {
	s := NewSequencer()
	s.Wait() // no tickets issued, returns immediately

	ticket := s.Ticket()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Wait returned with an outstanding ticket")
	default:
	}

	s.Done(ticket, nil)
	<-done
}