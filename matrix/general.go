package matrix

import (
	"github.com/latticeforge/gemmtree/threadteam"
	"github.com/latticeforge/gemmtree/view"
)

// General is a matrix view onto a buffer addressed by a plain (row_stride,
// column_stride) pair — the general-stride backend of SPEC_FULL.md §4.1.
// It is the natural type for a caller's own A/B/C operands before any
// packing stage transforms them.
type General[T Scalar] struct {
	alpha T

	yViews *view.Stack
	xViews *view.Stack

	rowStride, colStride int
	buf                   []T
	isAlias               bool
}

// NewGeneral allocates an h x w, row-major matrix: row_stride = w,
// column_stride = 1, matching the layout a Go caller handing in a flat
// []T naturally expects.
func NewGeneral[T Scalar](h, w int) *General[T] {
	return &General[T]{
		alpha:     1,
		yViews:    view.NewStack(h),
		xViews:    view.NewStack(w),
		rowStride: w,
		colStride: 1,
		buf:       alignedAlloc[T](h * w),
	}
}

// WrapGeneral builds a General view over a caller-owned buffer with an
// explicit (row_stride, column_stride) pair, with no copy. This is how a
// BLAS-shaped entry point (blasapi's Engine.Dgemm) presents a caller's own flat
// slice as a matrix operand.
func WrapGeneral[T Scalar](data []T, h, w, rowStride, colStride int) *General[T] {
	return &General[T]{
		alpha:     1,
		yViews:    view.NewStack(h),
		xViews:    view.NewStack(w),
		rowStride: rowStride,
		colStride: colStride,
		buf:       data,
	}
}

// Transpose swaps the row/column strides and the two view stacks in
// place. Only legal on a matrix with no zoomed sub-view installed — the
// source's "configuration error" class: attempting to transpose a
// sub-matrix fails fast.
func (m *General[T]) Transpose() {
	if m.yViews.Len() != 1 || m.xViews.Len() != 1 {
		panic("matrix: cannot transpose a sub-matrix view")
	}
	m.yViews, m.xViews = m.xViews, m.yViews
	m.rowStride, m.colStride = m.colStride, m.rowStride
}

func (m *General[T]) elemOffset(y, x int) int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	return (y+yv.Offset)*m.rowStride + (x+xv.Offset)*m.colStride
}

func (m *General[T]) Get(y, x int) T          { return m.buf[m.elemOffset(y, x)] }
func (m *General[T]) Set(y, x int, v T)       { m.buf[m.elemOffset(y, x)] = v }
func (m *General[T]) Height() int             { return m.yViews.Top().IterSize }
func (m *General[T]) Width() int              { return m.xViews.Top().IterSize }
func (m *General[T]) IterHeight() int         { return m.yViews.Top().IterSize }
func (m *General[T]) IterWidth() int          { return m.xViews.Top().IterSize }
func (m *General[T]) LogicalHPadding() int    { return m.yViews.Top().Padding }
func (m *General[T]) LogicalWPadding() int    { return m.xViews.Top().Padding }
func (m *General[T]) Alpha() T                { return m.alpha }
func (m *General[T]) SetAlpha(v T)            { m.alpha = v }

func (m *General[T]) PushYSplit(start, end int) { m.yViews.PushSplit(start, end, m.Height()) }
func (m *General[T]) PushXSplit(start, end int) { m.xViews.PushSplit(start, end, m.Width()) }
func (m *General[T]) PopYSplit()                { m.yViews.Pop() }
func (m *General[T]) PopXSplit()                { m.xViews.Pop() }

func (m *General[T]) PushYView(blksz int) int { return m.yViews.PushView(blksz) }
func (m *General[T]) PushXView(blksz int) int { return m.xViews.PushView(blksz) }
func (m *General[T]) PopYView()               { m.yViews.Pop() }
func (m *General[T]) PopXView()               { m.xViews.Pop() }

func (m *General[T]) SlideYViewTo(y, blksz int) { m.yViews.SlideTo(y, blksz) }
func (m *General[T]) SlideXViewTo(x, blksz int) { m.xViews.SlideTo(x, blksz) }

// MakeAlias produces a non-owning handle sharing this matrix's buffer and
// current top view. The owner (m) must outlive every alias it produces;
// SpawnThreads enforces this by construction (it blocks on the final
// barrier before returning, keeping the owning matrices alive on the
// caller's stack for the whole invocation).
func (m *General[T]) MakeAlias() *General[T] {
	return &General[T]{
		alpha:     m.alpha,
		yViews:    m.yViews.CloneTop(),
		xViews:    m.xViews.CloneTop(),
		rowStride: m.rowStride,
		colStride: m.colStride,
		buf:       m.buf,
		isAlias:   true,
	}
}

// SendAlias receives the buffer broadcast by thread 0 and installs it as
// an alias. General matrices are only ever top-level operands (never a
// packing buffer), so in practice this is unused by Pack stages, but it
// completes the ResizableBuffer-adjacent surface for symmetry with the
// panel backends.
func (m *General[T]) SendAlias(thr *threadteam.Info[T]) {
	buf := threadteam.Broadcast[T, []T](thr, m.buf)
	m.buf = buf
	m.isAlias = true
}

// Owned reports whether this instance owns its backing buffer (false for
// any handle produced by MakeAlias/SendAlias).
func (m *General[T]) Owned() bool { return !m.isAlias }

// RoCM capability: General exposes its own row/column strides as both the
// leaf and block strides, since it has no panel structure of its own.
func (m *General[T]) LeafRowStride() int { return m.rowStride }
func (m *General[T]) LeafColStride() int { return m.colStride }

func (m *General[T]) BlockRowStride(level, blksz int) int { return blksz * m.rowStride }
func (m *General[T]) BlockColStride(level, blksz int) int { return blksz * m.colStride }

func (m *General[T]) Data() []T { return m.buf }
func (m *General[T]) Offset() int {
	return m.elemOffset(0, 0)
}

var _ Mat[float64] = (*General[float64])(nil)
var _ RoCM[float64] = (*General[float64])(nil)
