package ctrl

import (
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// Distribution assigns each worker in a team its [start, end) range, in
// units of blocks of size nr, over a dimension of totalBlocks blocks.
type Distribution interface {
	Range(threadID, nThreads, totalBlocks int) (start, end int)
}

// TheRest gives each worker a contiguous chunk of ceil(totalBlocks /
// nThreads) blocks; the last worker's chunk is clipped to whatever
// remains, which may be smaller than the others'.
type TheRest struct{}

func (TheRest) Range(threadID, nThreads, totalBlocks int) (start, end int) {
	chunk := (totalBlocks + nThreads - 1) / nThreads
	start = threadID * chunk
	end = start + chunk
	if start > totalBlocks {
		start = totalBlocks
	}
	if end > totalBlocks {
		end = totalBlocks
	}
	return start, end
}

// ParallelM distributes the M dimension across the current thread team in
// blocks of Nr, installing each worker's slice as a one-shot split on A's
// and C's Y views (not a slide: the split is fixed for this invocation,
// not revisited). No entry barrier is required — callers guarantee views
// are stable on entry — and ParallelM itself adds no exit barrier; a
// child that mutates a shared buffer (Pack) supplies its own.
type ParallelM[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] struct {
	Nr    int
	Dist  Distribution
	Child GemmNode[T, A, B, C]
}

func NewParallelM[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]](nr int, dist Distribution, child GemmNode[T, A, B, C]) *ParallelM[T, A, B, C] {
	return &ParallelM[T, A, B, C]{Nr: nr, Dist: dist, Child: child}
}

func (s *ParallelM[T, A, B, C]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	m := c.IterHeight()
	totalBlocks := (m + s.Nr - 1) / s.Nr
	startBlk, endBlk := s.Dist.Range(thr.ThreadID, thr.NThreads(), totalBlocks)
	start, end := startBlk*s.Nr, endBlk*s.Nr
	if end > m {
		end = m
	}
	if start > end {
		start = end
	}

	a.PushYSplit(start, end)
	c.PushYSplit(start, end)
	s.Child.Run(a, b, c, thr)
	c.PopYSplit()
	a.PopYSplit()
}

func (s *ParallelM[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.Child.HierarchyDescription()
}

// ParallelN is ParallelM's mirror on N: B's and C's X views.
type ParallelN[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] struct {
	Nr    int
	Dist  Distribution
	Child GemmNode[T, A, B, C]
}

func NewParallelN[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]](nr int, dist Distribution, child GemmNode[T, A, B, C]) *ParallelN[T, A, B, C] {
	return &ParallelN[T, A, B, C]{Nr: nr, Dist: dist, Child: child}
}

func (s *ParallelN[T, A, B, C]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	n := c.IterWidth()
	totalBlocks := (n + s.Nr - 1) / s.Nr
	startBlk, endBlk := s.Dist.Range(thr.ThreadID, thr.NThreads(), totalBlocks)
	start, end := startBlk*s.Nr, endBlk*s.Nr
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}

	b.PushXSplit(start, end)
	c.PushXSplit(start, end)
	s.Child.Run(a, b, c, thr)
	c.PopXSplit()
	b.PopXSplit()
}

func (s *ParallelN[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.Child.HierarchyDescription()
}
