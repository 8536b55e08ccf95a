package kernel

import (
	"math"
	"testing"

	"github.com/latticeforge/gemmtree/matrix"
)

func naiveMatMul(a [][]float64, b [][]float64, alpha float64, c [][]float64, beta float64) [][]float64 {
	m, k, n := len(a), len(a[0]), len(b[0])
	out := make([][]float64, m)
	for i := 0; i < m; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var acc float64
			for p := 0; p < k; p++ {
				acc += a[i][p] * b[p][j]
			}
			out[i][j] = alpha*acc + beta*c[i][j]
		}
	}
	return out
}

func TestNMRunMatchesNaiveMatMulWithFringeTiles(t *testing.T) {
	const mr, nr = 2, 2
	m, k, n := 5, 3, 4 // m is not a multiple of mr: exercises runFringe.

	aData := make([][]float64, m)
	for i := range aData {
		aData[i] = make([]float64, k)
		for p := range aData[i] {
			aData[i][p] = float64(i*k + p + 1)
		}
	}
	bData := make([][]float64, k)
	for p := range bData {
		bData[p] = make([]float64, n)
		for j := range bData[p] {
			bData[p][j] = float64(p*n + j + 1)
		}
	}
	cData := make([][]float64, m)
	for i := range cData {
		cData[i] = make([]float64, n)
		for j := range cData[i] {
			cData[i][j] = float64(i + j)
		}
	}

	const alpha, beta = 2.0, 0.5
	want := naiveMatMul(aData, bData, alpha, cData, beta)

	a := matrix.NewRowPanel[float64](m, k, mr)
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			a.Set(i, p, aData[i][p])
		}
	}
	a.SetAlpha(alpha)

	b := matrix.NewColumnPanel[float64](k, n, nr)
	for p := 0; p < k; p++ {
		for j := 0; j < n; j++ {
			b.Set(p, j, bData[p][j])
		}
	}

	c := matrix.NewGeneral[float64](m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			c.Set(i, j, cData[i][j])
		}
	}
	c.SetAlpha(beta)

	a.PushYView(a.IterHeight())
	a.PushXView(a.IterWidth())
	b.PushYView(b.IterHeight())
	b.PushXView(b.IterWidth())
	c.PushYView(c.IterHeight())
	c.PushXView(c.IterWidth())

	leaf := NewNM[float64, *matrix.RowPanel[float64], *matrix.ColumnPanel[float64], *matrix.General[float64]](mr, nr, Reference[float64](mr, nr))
	leaf.Run(a, b, c, nil)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if got := c.Get(i, j); math.Abs(got-want[i][j]) > 1e-9 {
				t.Errorf("C[%d][%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestNMHierarchyDescriptionReportsRegisterBlockSizes(t *testing.T) {
	leaf := NewNM[float64, *matrix.RowPanel[float64], *matrix.ColumnPanel[float64], *matrix.General[float64]](4, 8, Reference[float64](4, 8))
	got := leaf.HierarchyDescription()
	want := []matrix.AlgorithmStep{{Kind: matrix.StepM, Bsz: 4}, {Kind: matrix.StepN, Bsz: 8}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("HierarchyDescription() = %v, want %v", got, want)
	}
}

func TestReferenceUkernelComputesOneTile(t *testing.T) {
	uk := Reference[float64](2, 2)
	// a is a 2-row, k=2 panel with unit row stride, column stride mr=2:
	// a[p*mr+i].
	a := []float64{1, 2, 3, 4} // p=0: [1,2], p=1: [3,4]
	b := []float64{5, 6, 7, 8} // p=0: [5,6], p=1: [7,8]
	c := make([]float64, 4)
	uk(2, 1, a, b, 0, c, 2, 1)

	// C[i][j] = sum_p a[p][i]*b[p][j]
	want := [][]float64{
		{1*5 + 3*7, 1*6 + 3*8},
		{2*5 + 4*7, 2*6 + 4*8},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got := c[i*2+j]; got != want[i][j] {
				t.Errorf("C[%d][%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}
