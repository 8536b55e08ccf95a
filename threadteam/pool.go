package threadteam

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/latticeforge/gemmtree/topology"
)

// Pool is a persistent, core-pinned team of goroutines shared across many
// GEMM invocations: SetNThreads resizes and re-pins it once; Dispatch runs
// one fork/join round per invocation, calling worker(id) for every worker
// id in [0, n) and blocking until all of them return. Worker 0 always runs
// on the caller's own goroutine, matching the source's "calling thread is
// a worker too."
//
// The pool itself only dispatches; it carries no knowledge of the control
// tree. SpawnThreads layers the per-worker control-tree cache and the
// ThreadComm construction on top of it.
type Pool struct {
	mu       sync.Mutex
	nThreads int
	workers  []*pinnedWorker
}

type pinnedWorker struct {
	id   int
	core topology.CPUSet
	jobs chan func()
	done chan struct{}
}

// NewPool creates a pool with a single worker (the caller).
func NewPool() *Pool {
	return &Pool{nThreads: 1}
}

// SetNThreads stops any existing background workers, spins up n-1 fresh
// ones (worker 0 is always the caller), and pins worker i to core i of the
// machine's topology. Callers are expected to clear any per-worker cache
// keyed by worker identity alongside this, since resizing invalidates the
// previous worker set.
func (p *Pool) SetNThreads(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.workers {
		close(w.jobs)
	}
	p.workers = nil
	p.nThreads = n

	cores := topology.ListCores()

	p.workers = make([]*pinnedWorker, 0, n-1)
	for id := 1; id < n; id++ {
		w := &pinnedWorker{id: id, jobs: make(chan func()), done: make(chan struct{})}
		if id < len(cores) {
			w.core = cores[id]
		}
		p.workers = append(p.workers, w)
		go w.loop()
	}

	if len(cores) > 0 {
		topology.BindCurrentThread(cores[0])
	}
}

// NThreads reports the current team size.
func (p *Pool) NThreads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nThreads
}

func (w *pinnedWorker) loop() {
	runtime.LockOSThread()
	topology.BindCurrentThread(w.core)
	for job := range w.jobs {
		job()
		w.done <- struct{}{}
	}
}

// Dispatch runs one fork/join round: worker(0) executes on the calling
// goroutine, worker(id) for id in [1, n) executes on the pool's pinned
// background goroutines. Dispatch does not return until every worker has
// returned from its call to worker.
func (p *Pool) Dispatch(worker func(id int)) {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			w.jobs <- func() { worker(w.id) }
			<-w.done
			return nil
		})
	}

	worker(0)
	_ = g.Wait()
}
