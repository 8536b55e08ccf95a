// Package blasapi exposes the control-tree core behind the same Dgemm
// shape gonum/blas's own Float64 implementations use: a flat-slice,
// row-major, (rows, cols, stride) calling convention. Everything this
// package does is assemble a default ctrl tree once and run it; the
// actual multiply is the control-tree core, not this file.
package blasapi

import (
	"github.com/gonum/blas"

	"github.com/latticeforge/gemmtree/ctrl"
	"github.com/latticeforge/gemmtree/gemmcfg"
	"github.com/latticeforge/gemmtree/kernel"
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/pack"
)

const badTranspose = "blasapi: illegal transpose"

type tree = ctrl.SpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]]

// Engine owns one assembled algorithm tree — and therefore the persistent,
// core-pinned worker pool and per-worker packing buffers behind it. Build
// one per distinct blocking/thread-count recipe and reuse it across calls;
// assembling a tree is not cheap enough to redo per Dgemm call.
type Engine struct {
	cfg  gemmcfg.Blocking
	tree *tree
}

// NewEngine assembles the default algorithm — PartN -> PartM -> UnpackC ->
// PackB -> PartK -> PackA -> ParallelN -> KernelNM — for the given
// blocking recipe, using the portable reference micro-kernel (see
// kernel.Reference; a hand-tuned assembly micro-kernel is outside this
// module's scope). C is held resident in a tile-of-tiles Hierarch buffer
// for the full K reduction of one (Mc, Nc) tile, so the accumulation
// across Kc steps never touches the caller's general-layout C until the
// tile is complete.
func NewEngine(cfg gemmcfg.Blocking) *Engine {
	e := &Engine{cfg: cfg}
	e.tree = assemble(cfg)
	n := cfg.NThreads
	if n < 1 {
		n = 1
	}
	e.tree.SetNThreads(n)
	return e
}

func assemble(cfg gemmcfg.Blocking) *tree {
	// The hierarchy description the finished tree will report, restated
	// directly from cfg rather than queried off the tree under
	// construction: UnpackC's packed C buffer needs it before PartM/PartN
	// (the stages that actually contribute the M{Mc}/N{Nc} entries) exist.
	steps := []matrix.AlgorithmStep{
		{Kind: matrix.StepN, Bsz: cfg.Nc},
		{Kind: matrix.StepM, Bsz: cfg.Mc},
		{Kind: matrix.StepK, Bsz: cfg.Kc},
		{Kind: matrix.StepM, Bsz: cfg.Mr},
		{Kind: matrix.StepN, Bsz: cfg.Nr},
	}

	newChild := func() ctrl.GemmNode[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]] {
		uk := kernel.Reference[float64](cfg.Mr, cfg.Nr)
		leaf := kernel.NewNM[float64, *matrix.RowPanel[float64], *matrix.ColumnPanel[float64], *matrix.Hierarch[float64]](cfg.Mr, cfg.Nr, uk)

		parN := ctrl.NewParallelN[float64, *matrix.RowPanel[float64], *matrix.ColumnPanel[float64], *matrix.Hierarch[float64]](cfg.Nr, ctrl.TheRest{}, leaf)

		packA := pack.NewPackA[float64, *matrix.General[float64], *matrix.ColumnPanel[float64], *matrix.Hierarch[float64]](
			matrix.EmptyRowPanel[float64](cfg.Mr), parN)

		partK := ctrl.NewPartK[float64, *matrix.General[float64], *matrix.ColumnPanel[float64], *matrix.Hierarch[float64]](cfg.Kc, packA)

		packB := pack.NewPackB[float64, *matrix.General[float64], *matrix.General[float64], *matrix.Hierarch[float64]](
			matrix.EmptyColumnPanel[float64](cfg.Nr), partK)

		unpackC := pack.NewUnpackC[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](
			matrix.EmptyHierarch[float64](matrix.StepM, matrix.StepN, steps), packB)

		partM := ctrl.NewPartM[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](cfg.Mc, unpackC)
		partN := ctrl.NewPartN[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](cfg.Nc, partM)

		return partN
	}
	return ctrl.NewSpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](newChild)
}

// SetNThreads resizes the engine's worker pool. Safe to call between
// Dgemm calls; not safe to call concurrently with one.
func (e *Engine) SetNThreads(n int) {
	e.tree.SetNThreads(n)
}

// Dgemm computes C := beta*C + alpha*op(A)*op(B), where op is a transpose
// when the corresponding flag is blas.Trans. m is the number of rows of
// op(A) and C; n is the number of columns of op(B) and C; k is the shared
// inner dimension. a, b, c are caller-owned, row-major flat slices with
// row strides lda, ldb, ldc respectively — the same calling convention
// gonum/blas.Float64 implementations use.
func (e *Engine) Dgemm(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	if tA != blas.NoTrans && tA != blas.Trans {
		panic(badTranspose)
	}
	if tB != blas.NoTrans && tB != blas.Trans {
		panic(badTranspose)
	}

	var am *matrix.General[float64]
	if tA == blas.Trans {
		am = matrix.WrapGeneral(a, k, m, lda, 1)
		am.Transpose()
	} else {
		am = matrix.WrapGeneral(a, m, k, lda, 1)
	}

	var bm *matrix.General[float64]
	if tB == blas.Trans {
		bm = matrix.WrapGeneral(b, n, k, ldb, 1)
		bm.Transpose()
	} else {
		bm = matrix.WrapGeneral(b, k, n, ldb, 1)
	}

	cm := matrix.WrapGeneral(c, m, n, ldc, 1)

	am.SetAlpha(alpha)
	cm.SetAlpha(beta)

	am.PushYView(am.IterHeight())
	am.PushXView(am.IterWidth())
	bm.PushYView(bm.IterHeight())
	bm.PushXView(bm.IterWidth())
	cm.PushYView(cm.IterHeight())
	cm.PushXView(cm.IterWidth())
	defer func() {
		cm.PopXView()
		cm.PopYView()
		bm.PopXView()
		bm.PopYView()
		am.PopXView()
		am.PopYView()
	}()

	e.tree.Run(am, bm, cm, nil)
}
