package pack

import (
	"github.com/latticeforge/gemmtree/ctrl"
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// UnpackC packs C into a persistent buffer, runs its child against the
// packed operand (which the child's K-loop then accumulates into in
// place, tile by tile), and on return copies the result back to the
// caller's general-layout C. This is the one packing stage that moves
// data in both directions: A and B are read-only for the duration of a
// call, but C is both an input (beta*C) and an output.
type UnpackC[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]] struct {
	Packed P
	Child  ctrl.GemmNode[T, A, B, P]
}

func NewUnpackC[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T], P matrix.ResizableBuffer[T, P]](packed P, child ctrl.GemmNode[T, A, B, P]) *UnpackC[T, A, B, C, P] {
	return &UnpackC[T, A, B, C, P]{Packed: packed, Child: child}
}

func (s *UnpackC[T, A, B, C, P]) Run(a A, b B, c C, thr *threadteam.Info[T]) {
	thr.Barrier()

	adjustCapacity[T, P](thr, s.Packed, c)
	s.Packed.ResizeTo(c)
	s.Packed.SetAlpha(c.Alpha())
	thr.Barrier()

	copyZeroFill[T](thr, c, s.Packed)
	thr.Barrier()

	s.Child.Run(a, b, s.Packed, thr)
	thr.Barrier()

	copyBack[T](thr, s.Packed, c)
	thr.Barrier()
}

func (s *UnpackC[T, A, B, C, P]) HierarchyDescription() []matrix.AlgorithmStep {
	return s.Child.HierarchyDescription()
}
