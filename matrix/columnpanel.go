package matrix

import (
	"github.com/latticeforge/gemmtree/internal/assert"
	"github.com/latticeforge/gemmtree/threadteam"
	"github.com/latticeforge/gemmtree/view"
)

// ColumnPanel is RowPanel's mirror image: a matrix stored as a sequence of
// column panels of width panelW. Element (y, x) lives at panel x/panelW,
// offset (y*panelW + x%panelW) within that panel. This is the layout
// KernelNM expects of B (leaf column stride 1, leaf row stride panelW) and
// is what PackB produces.
//
// The X view stack's Offset field is counted in panels, not elements, for
// the same reason RowPanel's Y offsets are.
type ColumnPanel[T Scalar] struct {
	alpha T

	yViews *view.Stack
	xViews *view.Stack // Offset in units of panels

	panelW      int
	panelStride int // = panelW * current logical height
	buf         []T
	capacity    int
	isAlias     bool
}

// NewColumnPanel allocates an h x w column-panel matrix with the given
// panel width.
func NewColumnPanel[T Scalar](h, w, panelW int) *ColumnPanel[T] {
	m := &ColumnPanel[T]{alpha: 1, panelW: panelW}
	m.yViews = view.NewStack(h)
	m.xViews = view.NewStack(w)
	m.panelStride = panelW * h
	m.capacity = columnPanelCapacityFor(h, w, panelW)
	m.buf = alignedAlloc[T](m.capacity)
	return m
}

func columnPanelCapacityFor(h, w, panelW int) int {
	if h == 0 || w == 0 {
		return 0
	}
	nPanels := (w-1)/panelW + 1
	return (nPanels + 1) * panelW * h
}

// EmptyColumnPanel constructs a zero-capacity packing matrix: the Pack
// stage allocates lazily on first use.
func EmptyColumnPanel[T Scalar](panelW int) *ColumnPanel[T] {
	m := &ColumnPanel[T]{alpha: 1, panelW: panelW}
	m.yViews = view.NewStack(0)
	m.xViews = view.NewStack(0)
	return m
}

// PanelWidth reports the panel width this matrix was constructed with.
func (m *ColumnPanel[T]) PanelWidth() int { return m.panelW }

// PanelStride reports the element stride between consecutive panels.
func (m *ColumnPanel[T]) PanelStride() int { return m.panelStride }

// Panel returns the backing slice starting at the given panel id (relative
// to the current top X view's panel offset), for the packer's cooperative
// copy loop.
func (m *ColumnPanel[T]) Panel(id int) []T {
	xv := m.xViews.Top()
	start := (xv.Offset + id) * m.panelStride
	return m.buf[start:]
}

func (m *ColumnPanel[T]) elemOffset(y, x int) int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	panelID := x / m.panelW
	panelIdx := x % m.panelW
	return (panelID+xv.Offset)*m.panelStride + (y+yv.Offset)*m.panelW + panelIdx
}

func (m *ColumnPanel[T]) Get(y, x int) T    { return m.buf[m.elemOffset(y, x)] }
func (m *ColumnPanel[T]) Set(y, x int, v T) { m.buf[m.elemOffset(y, x)] = v }

func (m *ColumnPanel[T]) Height() int          { return m.yViews.Top().IterSize }
func (m *ColumnPanel[T]) Width() int           { return m.xViews.Top().IterSize }
func (m *ColumnPanel[T]) IterHeight() int      { return m.yViews.Top().IterSize }
func (m *ColumnPanel[T]) IterWidth() int       { return m.xViews.Top().IterSize }
func (m *ColumnPanel[T]) LogicalHPadding() int { return m.yViews.Top().Padding }
func (m *ColumnPanel[T]) LogicalWPadding() int { return m.xViews.Top().Padding }
func (m *ColumnPanel[T]) Alpha() T             { return m.alpha }
func (m *ColumnPanel[T]) SetAlpha(v T)         { m.alpha = v }

func (m *ColumnPanel[T]) PushYSplit(start, end int) { m.yViews.PushSplit(start, end, m.Height()) }

// PushXSplit/PopXSplit are panel-granular: splits may only occur at
// multiples of panelW. Pack stages satisfy this by construction.
func (m *ColumnPanel[T]) PushXSplit(start, end int) {
	assert.True(start%m.panelW == 0 && end%m.panelW == 0, "matrix: column-panel split not panel-aligned")
	top := m.xViews.Top()
	padding := 0
	if end > m.Width() {
		padding = end - m.Width()
	}
	m.xViews.PushRaw(view.View{
		Offset:   top.Offset + start/m.panelW,
		Padding:  padding,
		IterSize: end - start,
	})
}
func (m *ColumnPanel[T]) PopYSplit() { m.yViews.Pop() }
func (m *ColumnPanel[T]) PopXSplit() { m.xViews.Pop() }

func (m *ColumnPanel[T]) PushYView(blksz int) int { return m.yViews.PushView(blksz) }
func (m *ColumnPanel[T]) PushXView(blksz int) int { return m.xViews.PushView(blksz) }
func (m *ColumnPanel[T]) PopYView()               { m.yViews.Pop() }
func (m *ColumnPanel[T]) PopXView()               { m.xViews.Pop() }

func (m *ColumnPanel[T]) SlideYViewTo(y, blksz int) { m.yViews.SlideTo(y, blksz) }

// SlideXViewTo mutates the top X view in place relative to the
// second-from-top (unzoomed) view, like view.Stack.SlideTo, but with the
// resulting offset expressed in panels rather than elements.
func (m *ColumnPanel[T]) SlideXViewTo(x, blksz int) {
	n := m.xViews.Len()
	assert.True(n >= 2, "matrix: slide on a column-panel stack with no child view")
	unzoomed := m.xViews.Views()[n-2]
	iterSize, padding := unzoomed.ZoomedSizeAndPadding(x, blksz)
	m.xViews.SetTop(view.View{
		Offset:   unzoomed.Offset + x/m.panelW,
		Padding:  padding,
		IterSize: iterSize,
	})
}

func (m *ColumnPanel[T]) MakeAlias() *ColumnPanel[T] {
	return &ColumnPanel[T]{
		alpha:       m.alpha,
		yViews:      m.yViews.CloneTop(),
		xViews:      m.xViews.CloneTop(),
		panelW:      m.panelW,
		panelStride: m.panelStride,
		buf:         m.buf,
		capacity:    m.capacity,
		isAlias:     true,
	}
}

func (m *ColumnPanel[T]) SendAlias(thr *threadteam.Info[T]) {
	buf := threadteam.Broadcast[T, []T](thr, m.buf)
	m.buf = buf
	m.isAlias = true
}

func (m *ColumnPanel[T]) Owned() bool { return !m.isAlias }

func (m *ColumnPanel[T]) Capacity() int     { return m.capacity }
func (m *ColumnPanel[T]) SetCapacity(n int) { m.capacity = n }
func (m *ColumnPanel[T]) CapacityFor(src Mat[T]) int {
	return columnPanelCapacityFor(src.Height(), src.Width(), m.panelW)
}
func (m *ColumnPanel[T]) AcquireBufferFor(req int) {
	if req > m.capacity {
		newBuf := alignedAlloc[T](req)
		copy(newBuf, m.buf)
		m.buf = newBuf
		m.capacity = req
	}
}
func (m *ColumnPanel[T]) ResizeTo(src Mat[T]) {
	assert.True(m.xViews.Len() == 1, "matrix: cannot resize a column-panel sub-matrix")
	m.yViews = view.NewStack(src.IterHeight())
	m.xViews = view.NewStack(src.IterWidth())
	m.yViews.SetTop(view.View{IterSize: src.IterHeight(), Padding: src.LogicalHPadding()})
	m.xViews.SetTop(view.View{IterSize: src.IterWidth(), Padding: src.LogicalWPadding()})
	m.panelStride = m.panelW * src.IterHeight()
}

// RoCM capability.
func (m *ColumnPanel[T]) LeafRowStride() int { return m.panelW }
func (m *ColumnPanel[T]) LeafColStride() int { return 1 }

func (m *ColumnPanel[T]) BlockRowStride(level, blksz int) int { return blksz * m.panelW }
func (m *ColumnPanel[T]) BlockColStride(level, blksz int) int {
	if level == 0 {
		return 1
	}
	assert.True(blksz%m.panelW == 0, "matrix: column-panel block stride size not panel-aligned")
	return m.panelStride * blksz / m.panelW
}

func (m *ColumnPanel[T]) Data() []T { return m.buf }
func (m *ColumnPanel[T]) Offset() int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	return yv.Offset*m.panelW + xv.Offset*m.panelStride
}

var _ Mat[float64] = (*ColumnPanel[float64])(nil)
var _ RoCM[float64] = (*ColumnPanel[float64])(nil)
