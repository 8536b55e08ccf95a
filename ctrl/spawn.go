package ctrl

import (
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// SpawnThreads is the root of every top-level algorithm. It owns a
// persistent, core-pinned worker pool and a per-worker cache of Child
// state (keyed by worker id, not a thread-local map), so a Pack stage's
// scratch buffer survives across repeated GEMM calls instead of being
// reallocated every time. NewChild is called at most once per worker
// slot, lazily, the first time that slot runs.
type SpawnThreads[T matrix.Scalar, A matrix.Aliasable[T, A], B matrix.Aliasable[T, B], C matrix.Aliasable[T, C]] struct {
	pool     *threadteam.Pool
	cache    []GemmNode[T, A, B, C]
	NewChild func() GemmNode[T, A, B, C]
}

// NewSpawnThreads constructs a single-worker (n_threads=1) root stage.
// newChild builds one fresh instance of the child subtree; it is invoked
// lazily, once per worker slot, the first time that slot runs.
func NewSpawnThreads[T matrix.Scalar, A matrix.Aliasable[T, A], B matrix.Aliasable[T, B], C matrix.Aliasable[T, C]](newChild func() GemmNode[T, A, B, C]) *SpawnThreads[T, A, B, C] {
	s := &SpawnThreads[T, A, B, C]{pool: threadteam.NewPool(), NewChild: newChild}
	s.SetNThreads(1)
	return s
}

// SetNThreads resizes and re-pins the worker pool and clears the per-
// worker child cache: a different team size invalidates any scratch
// buffer sized or indexed under the old one.
func (s *SpawnThreads[T, A, B, C]) SetNThreads(n int) {
	s.pool.SetNThreads(n)
	s.cache = make([]GemmNode[T, A, B, C], n)
}

func (s *SpawnThreads[T, A, B, C]) childFor(id int) GemmNode[T, A, B, C] {
	if s.cache[id] == nil {
		s.cache[id] = s.NewChild()
	}
	return s.cache[id]
}

func (s *SpawnThreads[T, A, B, C]) Run(a A, b B, c C, _ *threadteam.Info[T]) {
	n := s.pool.NThreads()
	comm := threadteam.NewComm[T](n)

	s.pool.Dispatch(func(id int) {
		myA, myB, myC := a, b, c
		if id != 0 {
			myA, myB, myC = a.MakeAlias(), b.MakeAlias(), c.MakeAlias()
		}
		thr := threadteam.NewInfo(id, comm)
		child := s.childFor(id)
		child.Run(myA, myB, myC, thr)
		thr.Barrier()
	})
}

func (s *SpawnThreads[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.childFor(0).HierarchyDescription()
}
