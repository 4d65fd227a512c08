package parallel

import "sync"

// Sequencer serializes out-of-order completions back into issue order.
//
// Stamp rendering runs concurrently on the worker pool, but stamps must
// land on the stroke buffer in the order the input points arrived or
// overlapping stamps would flicker between runs. Each render job takes a
// ticket before it is submitted; when it finishes it hands its apply
// closure to Done. Applies run exactly once each, in ticket order, on
// whichever goroutine closes the gap.
//
// Every ticket must be completed with exactly one Done call, even when
// rendering fails (pass a no-op). Apply closures must not call back into
// the Sequencer.
type Sequencer struct {
	mu       sync.Mutex
	next     uint64 // next ticket to apply
	issued   uint64 // tickets handed out
	pending  map[uint64]func()
	draining bool
	waiters  []chan struct{}
}

// NewSequencer creates an empty sequencer. A fresh one is made per stroke.
func NewSequencer() *Sequencer {
	return &Sequencer{pending: make(map[uint64]func())}
}

// Ticket reserves the next position in the apply order.
func (s *Sequencer) Ticket() uint64 {
	s.mu.Lock()
	t := s.issued
	s.issued++
	s.mu.Unlock()
	return t
}

// Done completes a ticket. If the ticket is next in line, its apply runs
// now along with any consecutive pending applies; otherwise it is held
// until the gap closes.
func (s *Sequencer) Done(ticket uint64, apply func()) {
	if apply == nil {
		apply = func() {}
	}

	s.mu.Lock()
	s.pending[ticket] = apply
	if s.draining {
		// Another goroutine is applying; it will pick this up.
		s.mu.Unlock()
		return
	}
	s.draining = true

	for {
		fn, ok := s.pending[s.next]
		if !ok {
			break
		}
		delete(s.pending, s.next)
		s.mu.Unlock()
		fn()
		s.mu.Lock()
		s.next++
	}

	s.draining = false
	if s.next == s.issued && len(s.waiters) > 0 {
		for _, w := range s.waiters {
			close(w)
		}
		s.waiters = nil
	}
	s.mu.Unlock()
}

// Wait blocks until every issued ticket has been applied. The stroke
// finalizer calls this before merging the stroke buffer into the layer.
func (s *Sequencer) Wait() {
	s.mu.Lock()
	if s.next == s.issued && !s.draining {
		s.mu.Unlock()
		return
	}
	w := make(chan struct{})
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()
	<-w
}

// Pending returns the number of completed tickets still waiting for an
// earlier one.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
