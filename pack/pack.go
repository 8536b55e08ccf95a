package pack

import (
	"github.com/latticeforge/gemmtree/ctrl"
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// PackA copies A into a packing matrix with the layout its child expects
// (row-panel, column-panel, or hierarchical), then recurses with the
// packed operand substituted for A. Packed is reused across invocations;
// set_n_threads-triggered per-worker caching keeps each worker's own copy
// alive so its buffer persists between GEMM calls instead of reallocating
// every time.
type PackA[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]] struct {
	Packed P
	Child  ctrl.GemmNode[T, P, B, C]
}

func NewPackA[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]](packed P, child ctrl.GemmNode[T, P, B, C]) *PackA[T, A, B, C, P] {
	return &PackA[T, A, B, C, P]{Packed: packed, Child: child}
}

func (s *PackA[T, A, B, C, P]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	thr.Barrier()

	adjustCapacity[T, P](thr, s.Packed, a)
	s.Packed.ResizeTo(a)
	s.Packed.SetAlpha(a.Alpha())
	thr.Barrier()

	copyZeroFill[T](thr, a, s.Packed)
	thr.Barrier()

	s.Child.Run(s.Packed, b, c, thr)
}

func (s *PackA[T, A, B, C, P]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.Child.HierarchyDescription()
}

// PackB is PackA's mirror for the B operand.
type PackB[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]] struct {
	Packed P
	Child  ctrl.GemmNode[T, A, P, C]
}

func NewPackB[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]](packed P, child ctrl.GemmNode[T, A, P, C]) *PackB[T, A, B, C, P] {
	return &PackB[T, A, B, C, P]{Packed: packed, Child: child}
}

func (s *PackB[T, A, B, C, P]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	thr.Barrier()

	adjustCapacity[T, P](thr, s.Packed, b)
	s.Packed.ResizeTo(b)
	s.Packed.SetAlpha(b.Alpha())
	thr.Barrier()

	copyZeroFill[T](thr, b, s.Packed)
	thr.Barrier()

	s.Child.Run(a, s.Packed, c, thr)
}

func (s *PackB[T, A, B, C, P]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.Child.HierarchyDescription()
}
