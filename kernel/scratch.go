package kernel

// runFringe handles a boundary (M, N) tile narrower than Mr x Nr. Go
// slices panic on out-of-bounds access, unlike the raw pointer arithmetic
// a hand-written micro-kernel performs, so a real C that isn't a multiple
// of Mr/Nr can't safely receive a full Mr x Nr write. Instead the
// micro-kernel runs into a reusable Mr*Nr scratch tile with beta=0, and
// only the valid mrEff x nrEff corner of that scratch is accumulated into
// C with the true beta. This is the same technique production BLAS
// micro-kernel wrappers use at the matrix boundary.
func (s *NM[T, A, B, C]) runFringe(k int, alpha T, a, b []T, beta T, c []T, cOffset, cRowStride, cColStride, mrEff, nrEff int) {
	var zero T
	s.Ukernel(k, alpha, a, b, zero, s.scratch, s.Nr, 1)

	for i := 0; i < mrEff; i++ {
		for j := 0; j < nrEff; j++ {
			dst := cOffset + i*cRowStride + j*cColStride
			c[dst] = beta*c[dst] + s.scratch[i*s.Nr+j]
		}
	}
}
