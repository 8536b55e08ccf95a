package ctrl

import (
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// PartM walks the M dimension in blocks of Bsz, sliding A's and C's Y
// views over each block and recursing into Child. The final block may be
// shorter than Bsz; SlideYViewTo records the shortfall as padding so
// Child's descendants (eventually a pack or kernel stage) know to zero-
// fill or clip. Run pushes its own Y view before the loop and pops it on
// return, leaving A's and C's view stacks exactly as it found them.
type PartM[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] struct {
	Bsz   int
	Child GemmNode[T, A, B, C]
}

func NewPartM[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]](bsz int, child GemmNode[T, A, B, C]) *PartM[T, A, B, C] {
	return &PartM[T, A, B, C]{Bsz: bsz, Child: child}
}

func (s *PartM[T, A, B, C]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	a.PushYView(s.Bsz)
	m := c.PushYView(s.Bsz)
	for i := 0; i < m; i += s.Bsz {
		a.SlideYViewTo(i, s.Bsz)
		c.SlideYViewTo(i, s.Bsz)
		s.Child.Run(a, b, c, thr)
	}
	c.PopYView()
	a.PopYView()
}

func (s *PartM[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return append([]matrix.AlgorithmStep{{Kind: matrix.StepM, Bsz: s.Bsz}}, s.Child.HierarchyDescription()...)
}

// PartN is PartM's mirror on N: it slides B's and C's X views.
type PartN[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] struct {
	Bsz   int
	Child GemmNode[T, A, B, C]
}

func NewPartN[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]](bsz int, child GemmNode[T, A, B, C]) *PartN[T, A, B, C] {
	return &PartN[T, A, B, C]{Bsz: bsz, Child: child}
}

func (s *PartN[T, A, B, C]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	b.PushXView(s.Bsz)
	n := c.PushXView(s.Bsz)
	for j := 0; j < n; j += s.Bsz {
		b.SlideXViewTo(j, s.Bsz)
		c.SlideXViewTo(j, s.Bsz)
		s.Child.Run(a, b, c, thr)
	}
	c.PopXView()
	b.PopXView()
}

func (s *PartN[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return append([]matrix.AlgorithmStep{{Kind: matrix.StepN, Bsz: s.Bsz}}, s.Child.HierarchyDescription()...)
}

// PartK walks the shared K dimension: A's X view and B's Y view.
type PartK[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] struct {
	Bsz   int
	Child GemmNode[T, A, B, C]
}

func NewPartK[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]](bsz int, child GemmNode[T, A, B, C]) *PartK[T, A, B, C] {
	return &PartK[T, A, B, C]{Bsz: bsz, Child: child}
}

func (s *PartK[T, A, B, C]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	k := a.PushXView(s.Bsz)
	b.PushYView(s.Bsz)
	// C's scalar (beta) applies to the first K block only; every later
	// block accumulates onto the partial sum with a scalar of 1.
	beta := c.Alpha()
	for p := 0; p < k; p += s.Bsz {
		a.SlideXViewTo(p, s.Bsz)
		b.SlideYViewTo(p, s.Bsz)
		s.Child.Run(a, b, c, thr)
		c.SetAlpha(1)
	}
	c.SetAlpha(beta)
	b.PopYView()
	a.PopXView()
}

func (s *PartK[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return append([]matrix.AlgorithmStep{{Kind: matrix.StepK, Bsz: s.Bsz}}, s.Child.HierarchyDescription()...)
}
