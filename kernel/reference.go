package kernel

import "github.com/latticeforge/gemmtree/matrix"

// Reference returns a portable, unoptimized Func implementing the
// micro-kernel ABI directly: three nested loops over the Mr x Nr tile and
// the shared K dimension. It exists so control-tree assembly and the view-
// stack plumbing can be exercised and tested independently of any hand-
// tuned assembly micro-kernel, which is outside this module's scope.
func Reference[T matrix.Scalar](mr, nr int) Func[T] {
	return func(k int, alpha T, a, b []T, beta T, c []T, cRowStride, cColStride int) {
		for i := 0; i < mr; i++ {
			for j := 0; j < nr; j++ {
				var acc T
				for p := 0; p < k; p++ {
					acc += a[p*mr+i] * b[p*nr+j]
				}
				dst := i*cRowStride + j*cColStride
				c[dst] = alpha*acc + beta*c[dst]
			}
		}
	}
}
