// Package kernel implements the KernelNM control-tree leaf: the register-
// blocked loop that drives the external micro-kernel ABI. The micro-kernel
// itself (the hand-tuned Mr x Nr inner product) is outside this module's
// scope; this package specifies and calls its boundary.
package kernel

import (
	"github.com/latticeforge/gemmtree/internal/assert"
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// Func is the micro-kernel ABI: compute a full Mr x Nr tile of C as
// C := alpha*A*B + beta*C, where A is a Mr-row panel (k columns, unit row
// stride, column stride Mr) and B is an Nr-column panel (k rows, unit
// column stride, row stride Nr). cRowStride/cColStride describe C's own
// single-tile access pattern. mr/nr are not passed per call: they are fixed
// when the Func is constructed (see Reference).
type Func[T matrix.Scalar] func(k int, alpha T, a, b []T, beta T, c []T, cRowStride, cColStride int)

// NM is the KernelNM stage: the leaf of every assembled algorithm. It
// walks the current (M, N) sub-view in Mr x Nr register blocks, invoking
// Ukernel for each, and falls back to a scratch-buffer edge tile when C's
// true extent does not divide evenly by Mr/Nr (see scratch.go).
type NM[T matrix.Scalar, A matrix.RoCM[T], B matrix.RoCM[T], C matrix.RoCM[T]] struct {
	Mr, Nr  int
	Ukernel Func[T]

	scratch []T
}

// NewNM constructs a KernelNM stage for the given register-block
// dimensions and micro-kernel implementation.
func NewNM[T matrix.Scalar, A matrix.RoCM[T], B matrix.RoCM[T], C matrix.RoCM[T]](mr, nr int, ukernel Func[T]) *NM[T, A, B, C] {
	return &NM[T, A, B, C]{Mr: mr, Nr: nr, Ukernel: ukernel, scratch: make([]T, mr*nr)}
}

func (s *NM[T, A, B, C]) Run(a A, b B, c C, _ *threadteam.Info[T]) {
	assert.True(a.LeafRowStride() == 1 && a.LeafColStride() == s.Mr, "kernel: A is not Mr-row-panel layout")
	assert.True(b.LeafColStride() == 1 && b.LeafRowStride() == s.Nr, "kernel: B is not Nr-column-panel layout")

	m, n := c.Height(), c.Width()
	k := a.Width()

	ap := a.Data()[a.Offset():]
	bp := b.Data()[b.Offset():]
	cp := c.Data()

	cRowStride := c.LeafRowStride()
	cColStride := c.LeafColStride()

	cNrStride := c.BlockColStride(1, s.Nr)
	bNrStride := b.BlockColStride(1, s.Nr)
	cMrStride := c.BlockRowStride(1, s.Mr)
	aMrStride := a.BlockRowStride(1, s.Mr)

	alpha, beta := a.Alpha()*b.Alpha(), c.Alpha()

	cBase := c.Offset()
	for jr, bOff := 0, 0; jr < n; jr, bOff = jr+s.Nr, bOff+bNrStride {
		nrEff := s.Nr
		if jr+nrEff > n {
			nrEff = n - jr
		}
		cJrBase := cBase + (jr/s.Nr)*cNrStride

		for ir, aOff := 0, 0; ir < m; ir, aOff = ir+s.Mr, aOff+aMrStride {
			mrEff := s.Mr
			if ir+mrEff > m {
				mrEff = m - ir
			}
			cTileBase := cJrBase + (ir/s.Mr)*cMrStride

			if mrEff == s.Mr && nrEff == s.Nr {
				s.Ukernel(k, alpha, ap[aOff:], bp[bOff:], beta, cp[cTileBase:], cRowStride, cColStride)
				continue
			}
			s.runFringe(k, alpha, ap[aOff:], bp[bOff:], beta, cp, cTileBase, cRowStride, cColStride, mrEff, nrEff)
		}
	}
}

func (s *NM[T, A, B, C]) HierarchyDescription() []matrix.AlgorithmStep {
	return []matrix.AlgorithmStep{{Kind: matrix.StepM, Bsz: s.Mr}, {Kind: matrix.StepN, Bsz: s.Nr}}
}
