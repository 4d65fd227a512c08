package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines for stamp rendering and tile
// compositing.
//
// Work is distributed across per-worker queues; an idle worker steals from
// the others before blocking, which keeps load even when some stamps are
// much larger than others.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// workQueues holds per-worker queues. Each worker primarily pulls
	// from its own queue but steals from others when empty.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a worker pool. If workers is 0 or negative,
// GOMAXPROCS is used. Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				// Nothing anywhere, block on own queue.
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work across workers and waits for completion.
// This is the entry point for compositing dirty tiles. A closed pool runs
// nothing.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))

	for i, fn := range work {
		workerID := i % p.workers
		workFn := fn

		wrapped := func() {
			defer completionWG.Done()
			workFn()
		}

		select {
		case p.workQueues[workerID] <- wrapped:
		case <-p.done:
			completionWG.Done()
		}
	}

	completionWG.Wait()
}

// Submit sends a single work item to the worker with the shortest queue.
// Stamp render jobs go through here. A closed pool drops the work.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}

	minLen := len(p.workQueues[0])
	minIdx := 0
	for i := 1; i < p.workers; i++ {
		if qLen := len(p.workQueues[i]); qLen < minLen {
			minLen = qLen
			minIdx = i
		}
	}

	select {
	case p.workQueues[minIdx] <- fn:
	case <-p.done:
	}
}

// Close stops accepting work, finishes what is queued, and stops all
// workers. Safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
