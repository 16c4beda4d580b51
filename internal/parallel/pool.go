// Package parallel runs batches of independent work on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs work items on a fixed number of goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so one slow item does not hold back the rest of a batch.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool. If workers is 0 or negative, GOMAXPROCS is
// used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
			continue
		default:
		}
		if work := p.steal(id); work != nil {
			work()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
		}
	}
}

func drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll runs every item of work and waits for all of them. Items are
// dealt round-robin to the worker queues. A closed pool runs nothing.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		item := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%p.workers] <- item:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// Close stops the pool after queued work has run. Close is idempotent and
// must not be called while ExecuteAll is in progress.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
