package matrix

import (
	"github.com/latticeforge/gemmtree/internal/assert"
	"github.com/latticeforge/gemmtree/threadteam"
	"github.com/latticeforge/gemmtree/view"
)

// RowPanel stores a matrix as a sequence of row panels of height panelH:
// element (y, x) lives at panel y/panelH, offset (x*panelH + y%panelH)
// within that panel. This is the layout KernelNM expects of A (leaf row
// stride 1, leaf column stride panelH) and is what PackA produces.
//
// The Y view stack's Offset field is counted in panels, not elements,
// since a row-panel matrix can only ever be split on panel boundaries.
type RowPanel[T Scalar] struct {
	alpha T

	yViews *view.Stack // Offset in units of panels
	xViews *view.Stack

	panelH      int
	panelStride int // = panelH * current logical width
	buf         []T
	capacity    int
	isAlias     bool
}

// NewRowPanel allocates an h x w row-panel matrix with the given panel
// height. One extra panel of slack is allocated beyond what h strictly
// requires, matching the source's "extra panel for preloading in ukernel."
func NewRowPanel[T Scalar](h, w, panelH int) *RowPanel[T] {
	m := &RowPanel[T]{alpha: 1, panelH: panelH}
	m.yViews = view.NewStack(h)
	m.xViews = view.NewStack(w)
	m.panelStride = panelH * w
	m.capacity = rowPanelCapacityFor(h, w, panelH)
	m.buf = alignedAlloc[T](m.capacity)
	return m
}

func rowPanelCapacityFor(h, w, panelH int) int {
	if h == 0 || w == 0 {
		return 0
	}
	nPanels := (h-1)/panelH + 1
	return (nPanels + 1) * panelH * w
}

// EmptyRowPanel constructs a zero-capacity packing matrix: the Pack stage
// allocates lazily on first use.
func EmptyRowPanel[T Scalar](panelH int) *RowPanel[T] {
	m := &RowPanel[T]{alpha: 1, panelH: panelH}
	m.yViews = view.NewStack(0)
	m.xViews = view.NewStack(0)
	return m
}

// PanelHeight reports the panel height this matrix was constructed with.
func (m *RowPanel[T]) PanelHeight() int { return m.panelH }

// PanelStride reports the element stride between consecutive panels.
func (m *RowPanel[T]) PanelStride() int { return m.panelStride }

// Panel returns the backing slice starting at the given panel id (relative
// to the current top Y view's panel offset), for the packer's cooperative
// copy loop.
func (m *RowPanel[T]) Panel(id int) []T {
	yv := m.yViews.Top()
	start := (yv.Offset + id) * m.panelStride
	return m.buf[start:]
}

func (m *RowPanel[T]) elemOffset(y, x int) int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	panelID := y / m.panelH
	panelIdx := y % m.panelH
	return (panelID+yv.Offset)*m.panelStride + (x+xv.Offset)*m.panelH + panelIdx
}

func (m *RowPanel[T]) Get(y, x int) T    { return m.buf[m.elemOffset(y, x)] }
func (m *RowPanel[T]) Set(y, x int, v T) { m.buf[m.elemOffset(y, x)] = v }

func (m *RowPanel[T]) Height() int          { return m.yViews.Top().IterSize }
func (m *RowPanel[T]) Width() int           { return m.xViews.Top().IterSize }
func (m *RowPanel[T]) IterHeight() int      { return m.yViews.Top().IterSize }
func (m *RowPanel[T]) IterWidth() int       { return m.xViews.Top().IterSize }
func (m *RowPanel[T]) LogicalHPadding() int { return m.yViews.Top().Padding }
func (m *RowPanel[T]) LogicalWPadding() int { return m.xViews.Top().Padding }
func (m *RowPanel[T]) Alpha() T             { return m.alpha }
func (m *RowPanel[T]) SetAlpha(v T)         { m.alpha = v }

// PushYSplit/PopYSplit are panel-granular: splits may only occur at
// multiples of panelH. Pack stages satisfy this by construction (they
// only ever split on whole panels).
func (m *RowPanel[T]) PushYSplit(start, end int) {
	assert.True(start%m.panelH == 0 && end%m.panelH == 0, "matrix: row-panel split not panel-aligned")
	top := m.yViews.Top()
	padding := 0
	if end > m.Height() {
		padding = end - m.Height()
	}
	m.yViews.PushRaw(view.View{
		Offset:   top.Offset + start/m.panelH,
		Padding:  padding,
		IterSize: end - start,
	})
}
func (m *RowPanel[T]) PushXSplit(start, end int) { m.xViews.PushSplit(start, end, m.Width()) }
func (m *RowPanel[T]) PopYSplit()                { m.yViews.Pop() }
func (m *RowPanel[T]) PopXSplit()                { m.xViews.Pop() }

func (m *RowPanel[T]) PushYView(blksz int) int { return m.yViews.PushView(blksz) }
func (m *RowPanel[T]) PushXView(blksz int) int { return m.xViews.PushView(blksz) }
func (m *RowPanel[T]) PopYView()               { m.yViews.Pop() }
func (m *RowPanel[T]) PopXView()               { m.xViews.Pop() }

// SlideYViewTo mutates the top Y view in place relative to the
// second-from-top (unzoomed) view, like view.Stack.SlideTo, but with the
// resulting offset expressed in panels rather than elements.
func (m *RowPanel[T]) SlideYViewTo(y, blksz int) {
	n := m.yViews.Len()
	assert.True(n >= 2, "matrix: slide on a row-panel stack with no child view")
	unzoomed := m.yViews.Views()[n-2]
	iterSize, padding := unzoomed.ZoomedSizeAndPadding(y, blksz)
	m.yViews.SetTop(view.View{
		Offset:   unzoomed.Offset + y/m.panelH,
		Padding:  padding,
		IterSize: iterSize,
	})
}
func (m *RowPanel[T]) SlideXViewTo(x, blksz int) { m.xViews.SlideTo(x, blksz) }

func (m *RowPanel[T]) MakeAlias() *RowPanel[T] {
	return &RowPanel[T]{
		alpha:       m.alpha,
		yViews:      m.yViews.CloneTop(),
		xViews:      m.xViews.CloneTop(),
		panelH:      m.panelH,
		panelStride: m.panelStride,
		buf:         m.buf,
		capacity:    m.capacity,
		isAlias:     true,
	}
}

func (m *RowPanel[T]) SendAlias(thr *threadteam.Info[T]) {
	buf := threadteam.Broadcast[T, []T](thr, m.buf)
	m.buf = buf
	m.isAlias = true
}

func (m *RowPanel[T]) Owned() bool { return !m.isAlias }

func (m *RowPanel[T]) Capacity() int     { return m.capacity }
func (m *RowPanel[T]) SetCapacity(n int) { m.capacity = n }
func (m *RowPanel[T]) CapacityFor(src Mat[T]) int {
	return rowPanelCapacityFor(src.Height(), src.Width(), m.panelH)
}
func (m *RowPanel[T]) AcquireBufferFor(req int) {
	if req > m.capacity {
		newBuf := alignedAlloc[T](req)
		copy(newBuf, m.buf)
		m.buf = newBuf
		m.capacity = req
	}
}
func (m *RowPanel[T]) ResizeTo(src Mat[T]) {
	assert.True(m.yViews.Len() == 1, "matrix: cannot resize a row-panel sub-matrix")
	m.yViews = view.NewStack(src.IterHeight())
	m.xViews = view.NewStack(src.IterWidth())
	m.yViews.SetTop(view.View{IterSize: src.IterHeight(), Padding: src.LogicalHPadding()})
	m.xViews.SetTop(view.View{IterSize: src.IterWidth(), Padding: src.LogicalWPadding()})
	m.panelStride = m.panelH * src.IterWidth()
}

// RoCM capability.
func (m *RowPanel[T]) LeafRowStride() int { return 1 }
func (m *RowPanel[T]) LeafColStride() int { return m.panelH }

func (m *RowPanel[T]) BlockRowStride(level, blksz int) int {
	if level == 0 {
		return 1
	}
	assert.True(blksz%m.panelH == 0, "matrix: row-panel block stride size not panel-aligned")
	return m.panelStride * blksz / m.panelH
}
func (m *RowPanel[T]) BlockColStride(level, blksz int) int { return blksz * m.panelH }

func (m *RowPanel[T]) Data() []T { return m.buf }
func (m *RowPanel[T]) Offset() int {
	yv := m.yViews.Top()
	xv := m.xViews.Top()
	return xv.Offset*m.panelH + yv.Offset*m.panelStride
}

var _ Mat[float64] = (*RowPanel[float64])(nil)
var _ RoCM[float64] = (*RowPanel[float64])(nil)
