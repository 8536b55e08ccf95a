package matrix

import (
	"github.com/latticeforge/gemmtree/internal/assert"
	"github.com/latticeforge/gemmtree/threadteam"
	"github.com/latticeforge/gemmtree/view"
)

// hierarchLevel is one nesting level of a Hierarch matrix's address table:
// a dimension tag plus the block size the enclosing algorithm step walked
// that dimension in.
type hierarchLevel struct {
	kind  StepKind
	blksz int
}

// Hierarch stores a matrix whose strides are not a (row, column) pair but
// a table derived from the enclosing algorithm's hierarchy description:
// each level's stride is the product of how many distinct positions every
// more-deeply-nested level contributes (see hierarchStrides). One
// physical buffer can then encode a tile-of-tiles layout — e.g. an Mc x Nc
// block of Mr x Nr register tiles — with O(1) address computation at any
// nesting depth. The kernel package places no constraint on a C operand's
// leaf/block strides (unlike A and B, which it requires in row-panel and
// column-panel form respectively), which is why Hierarch is wired in only
// as UnpackC's packing buffer.
//
// The levels are filtered from the full hierarchy description down to the
// two StepKinds relevant to this matrix's own dimensions (yKind, xKind),
// preserving root-to-leaf (coarsest-to-finest) order. Whichever dimension's
// finest named step does not already reach single-element granularity
// gets a synthetic trailing blksz-1 level appended, so every position
// remains addressable down to one scalar; this is an explicit extension of
// the step-list addressing scheme, not something the step list states on
// its own.
type Hierarch[T Scalar] struct {
	alpha T

	yViews *view.Stack
	xViews *view.Stack

	yKind, xKind StepKind
	levels       []hierarchLevel
	strides      []int

	buf      []T
	capacity int
	isAlias  bool
}

// NewHierarch allocates an h x w hierarchical matrix addressed according
// to steps, filtered to the (yKind, xKind) pair this operand cares about:
// M+K for an A-shaped operand, K+N for B-shaped, M+N for C-shaped.
func NewHierarch[T Scalar](h, w int, yKind, xKind StepKind, steps []AlgorithmStep) *Hierarch[T] {
	levels := deriveHierarchLevels(steps, yKind, xKind)
	m := &Hierarch[T]{
		alpha:  1,
		yKind:  yKind,
		xKind:  xKind,
		levels: levels,
	}
	m.strides = hierarchStrides(levels)
	m.yViews = view.NewStack(h)
	m.xViews = view.NewStack(w)
	m.capacity = hierarchCapacityFor(h, w, levels, yKind, xKind)
	m.buf = alignedAlloc[T](m.capacity)
	return m
}

// EmptyHierarch constructs a zero-capacity packing matrix: the Pack stage
// allocates lazily on first use, once it knows steps (and therefore the
// level table) at assembly time.
func EmptyHierarch[T Scalar](yKind, xKind StepKind, steps []AlgorithmStep) *Hierarch[T] {
	levels := deriveHierarchLevels(steps, yKind, xKind)
	m := &Hierarch[T]{alpha: 1, yKind: yKind, xKind: xKind, levels: levels}
	m.strides = hierarchStrides(levels)
	m.yViews = view.NewStack(0)
	m.xViews = view.NewStack(0)
	return m
}

func deriveHierarchLevels(steps []AlgorithmStep, yKind, xKind StepKind) []hierarchLevel {
	levels := make([]hierarchLevel, 0, len(steps)+2)
	for _, s := range steps {
		if s.Kind == yKind || s.Kind == xKind {
			levels = append(levels, hierarchLevel{kind: s.Kind, blksz: s.Bsz})
		}
	}
	if finestHierarchBlksz(levels, yKind) != 1 {
		levels = append(levels, hierarchLevel{kind: yKind, blksz: 1})
	}
	if finestHierarchBlksz(levels, xKind) != 1 {
		levels = append(levels, hierarchLevel{kind: xKind, blksz: 1})
	}
	return levels
}

func finestHierarchBlksz(levels []hierarchLevel, kind StepKind) int {
	for i := len(levels) - 1; i >= 0; i-- {
		if levels[i].kind == kind {
			return levels[i].blksz
		}
	}
	return 0
}

func coarsestHierarchBlksz(levels []hierarchLevel, kind StepKind) int {
	for _, lvl := range levels {
		if lvl.kind == kind {
			return lvl.blksz
		}
	}
	return 1
}

// hierarchStrides assigns each level the product of the trip counts of
// every level more deeply nested than it, regardless of dimension. A
// level's own trip count is how many distinct digit values it contributes
// within its immediate same-dimension parent: the parent's block size
// divided by its own (the same ratio elemOffset folds its digit against),
// except the first occurrence of a dimension, whose trip count is fixed
// at 1 — a Hierarch instance is always sized to hold exactly one of its
// coarsest block along each dimension (see ResizeTo), so a dimension's
// root level never ranges over more than a single position.
//
// Multiplying by raw block sizes instead of trip counts collapses two
// distinct positions onto the same offset as soon as a dimension has more
// than one level (e.g. Mc then Mr): trip counts are what makes the scheme
// bijective.
func hierarchStrides(levels []hierarchLevel) []int {
	var lastBlksz [3]int
	var seen [3]bool
	trip := make([]int, len(levels))
	for i, lvl := range levels {
		if seen[lvl.kind] {
			trip[i] = lastBlksz[lvl.kind] / lvl.blksz
		} else {
			trip[i] = 1
			seen[lvl.kind] = true
		}
		lastBlksz[lvl.kind] = lvl.blksz
	}

	strides := make([]int, len(levels))
	acc := 1
	for i := len(levels) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= trip[i]
	}
	return strides
}

func hierarchCapacityFor(h, w int, levels []hierarchLevel, yKind, xKind StepKind) int {
	if h == 0 || w == 0 {
		return 0
	}
	yCoarse := coarsestHierarchBlksz(levels, yKind)
	xCoarse := coarsestHierarchBlksz(levels, xKind)
	yTotal := ((h-1)/yCoarse + 1) * yCoarse
	xTotal := ((w-1)/xCoarse + 1) * xCoarse
	return yTotal * xTotal
}

func (m *Hierarch[T]) elemOffset(y, x int) int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	yy := y + yv.Offset
	xx := x + xv.Offset

	off := 0
	yParent, xParent := -1, -1
	for i, lvl := range m.levels {
		switch lvl.kind {
		case m.yKind:
			digit := yy / lvl.blksz
			if yParent >= 0 {
				digit %= yParent / lvl.blksz
			}
			off += digit * m.strides[i]
			yParent = lvl.blksz
		case m.xKind:
			digit := xx / lvl.blksz
			if xParent >= 0 {
				digit %= xParent / lvl.blksz
			}
			off += digit * m.strides[i]
			xParent = lvl.blksz
		}
	}
	return off
}

func (m *Hierarch[T]) Get(y, x int) T    { return m.buf[m.elemOffset(y, x)] }
func (m *Hierarch[T]) Set(y, x int, v T) { m.buf[m.elemOffset(y, x)] = v }

func (m *Hierarch[T]) Height() int          { return m.yViews.Top().IterSize }
func (m *Hierarch[T]) Width() int           { return m.xViews.Top().IterSize }
func (m *Hierarch[T]) IterHeight() int      { return m.yViews.Top().IterSize }
func (m *Hierarch[T]) IterWidth() int       { return m.xViews.Top().IterSize }
func (m *Hierarch[T]) LogicalHPadding() int { return m.yViews.Top().Padding }
func (m *Hierarch[T]) LogicalWPadding() int { return m.xViews.Top().Padding }
func (m *Hierarch[T]) Alpha() T             { return m.alpha }
func (m *Hierarch[T]) SetAlpha(v T)         { m.alpha = v }

func (m *Hierarch[T]) PushYSplit(start, end int) { m.yViews.PushSplit(start, end, m.Height()) }
func (m *Hierarch[T]) PushXSplit(start, end int) { m.xViews.PushSplit(start, end, m.Width()) }
func (m *Hierarch[T]) PopYSplit()                { m.yViews.Pop() }
func (m *Hierarch[T]) PopXSplit()                { m.xViews.Pop() }

func (m *Hierarch[T]) PushYView(blksz int) int { return m.yViews.PushView(blksz) }
func (m *Hierarch[T]) PushXView(blksz int) int { return m.xViews.PushView(blksz) }
func (m *Hierarch[T]) PopYView()               { m.yViews.Pop() }
func (m *Hierarch[T]) PopXView()               { m.xViews.Pop() }

func (m *Hierarch[T]) SlideYViewTo(y, blksz int) { m.yViews.SlideTo(y, blksz) }
func (m *Hierarch[T]) SlideXViewTo(x, blksz int) { m.xViews.SlideTo(x, blksz) }

func (m *Hierarch[T]) MakeAlias() *Hierarch[T] {
	return &Hierarch[T]{
		alpha:    m.alpha,
		yViews:   m.yViews.CloneTop(),
		xViews:   m.xViews.CloneTop(),
		yKind:    m.yKind,
		xKind:    m.xKind,
		levels:   m.levels,
		strides:  m.strides,
		buf:      m.buf,
		capacity: m.capacity,
		isAlias:  true,
	}
}

func (m *Hierarch[T]) SendAlias(thr *threadteam.Info[T]) {
	buf := threadteam.Broadcast[T, []T](thr, m.buf)
	m.buf = buf
	m.isAlias = true
}

func (m *Hierarch[T]) Owned() bool { return !m.isAlias }

func (m *Hierarch[T]) Capacity() int     { return m.capacity }
func (m *Hierarch[T]) SetCapacity(n int) { m.capacity = n }
func (m *Hierarch[T]) CapacityFor(src Mat[T]) int {
	return hierarchCapacityFor(src.Height(), src.Width(), m.levels, m.yKind, m.xKind)
}
func (m *Hierarch[T]) AcquireBufferFor(req int) {
	if req > m.capacity {
		newBuf := alignedAlloc[T](req)
		copy(newBuf, m.buf)
		m.buf = newBuf
		m.capacity = req
	}
}
func (m *Hierarch[T]) ResizeTo(src Mat[T]) {
	assert.True(m.yViews.Len() == 1 && m.xViews.Len() == 1, "matrix: cannot resize a hierarchical sub-matrix")
	m.yViews = view.NewStack(src.IterHeight())
	m.xViews = view.NewStack(src.IterWidth())
	m.yViews.SetTop(view.View{IterSize: src.IterHeight(), Padding: src.LogicalHPadding()})
	m.xViews.SetTop(view.View{IterSize: src.IterWidth(), Padding: src.LogicalWPadding()})
}

// RoCM capability: the leaf strides are the finest level table entry for
// the Y (row) and X (column) dimension respectively.
func (m *Hierarch[T]) LeafRowStride() int {
	return m.levelStride(m.yKind, finestHierarchBlksz(m.levels, m.yKind))
}
func (m *Hierarch[T]) LeafColStride() int {
	return m.levelStride(m.xKind, finestHierarchBlksz(m.levels, m.xKind))
}

func (m *Hierarch[T]) BlockRowStride(level, blksz int) int { return m.levelStride(m.yKind, blksz) }
func (m *Hierarch[T]) BlockColStride(level, blksz int) int { return m.levelStride(m.xKind, blksz) }

func (m *Hierarch[T]) levelStride(kind StepKind, blksz int) int {
	for i, lvl := range m.levels {
		if lvl.kind == kind && lvl.blksz == blksz {
			return m.strides[i]
		}
	}
	assert.True(false, "matrix: no hierarchical level registered for that step")
	return 0
}

func (m *Hierarch[T]) Data() []T   { return m.buf }
func (m *Hierarch[T]) Offset() int { return m.elemOffset(0, 0) }

var _ Mat[float64] = (*Hierarch[float64])(nil)
var _ RoCM[float64] = (*Hierarch[float64])(nil)
