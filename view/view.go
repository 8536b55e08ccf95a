// Package view implements the per-dimension view stack shared by every
// matrix backend: an ordered, non-empty sequence of (offset, padding,
// iter_size) records whose top describes the currently addressed
// sub-matrix.
package view

import "github.com/latticeforge/gemmtree/internal/assert"

// View is a single zoomed window onto a parent dimension.
type View struct {
	Offset   int
	Padding  int
	IterSize int
}

// ZoomedSizeAndPadding returns the iter_size and padding of the block of
// size blksz starting at position within v. When the block runs past v's
// true extent, the shortfall is reported as padding so downstream pack and
// kernel stages know to zero-fill.
func (v View) ZoomedSizeAndPadding(position, blksz int) (iterSize, padding int) {
	iterSize = blksz
	if position+blksz > v.IterSize {
		iterSize = v.IterSize - position
		if iterSize < 0 {
			iterSize = 0
		}
	}
	padding = blksz - iterSize
	return iterSize, padding
}

// Stack is the per-dimension view stack of a matrix backend. It is never
// empty: index 0 is the whole-matrix view.
type Stack struct {
	views []View
}

// NewStack creates a stack with a single bottom view spanning [0, iterSize).
func NewStack(iterSize int) *Stack {
	return &Stack{views: []View{{IterSize: iterSize}}}
}

// Top returns the current (topmost) view.
func (s *Stack) Top() View {
	return s.views[len(s.views)-1]
}

// Len reports the stack depth.
func (s *Stack) Len() int {
	return len(s.views)
}

// Views exposes the full view history, bottom first. Panel backends use
// this to reach the second-from-top (unzoomed) view when implementing
// their own panel-unit slide semantics on top of SetTop.
func (s *Stack) Views() []View {
	return s.views
}

// PushSplit installs a split view [start, end) over the current top,
// computing padding against physicalBound, the extent the split is
// measured against (every backend passes its current top view's
// IterSize).
func (s *Stack) PushSplit(start, end, physicalBound int) {
	top := s.Top()
	padding := 0
	if end > physicalBound {
		padding = end - physicalBound
	}
	s.views = append(s.views, View{
		Offset:   top.Offset + start,
		Padding:  padding,
		IterSize: end - start,
	})
}

// PushView installs a zoomable child view of size blksz over the current
// top, returning the top's unzoomed iter_size so the caller (a partition
// stage) knows the full extent it is about to walk.
func (s *Stack) PushView(blksz int) int {
	top := s.Top()
	iterSize, padding := top.ZoomedSizeAndPadding(0, blksz)
	s.views = append(s.views, View{
		Offset:   top.Offset,
		Padding:  padding,
		IterSize: iterSize,
	})
	return top.IterSize
}

// PushRaw pushes an already-computed View verbatim. Panel backends whose
// offsets are counted in panel units (not elements) use this instead of
// PushSplit/PushView, since those compute element-unit offsets.
func (s *Stack) PushRaw(v View) {
	s.views = append(s.views, v)
}

// SetTop overwrites the current top view in place. Panel backends use this
// alongside ZoomedSizeAndPadding to implement slide semantics when the
// offset unit (panels, not elements) differs from the generic SlideTo.
func (s *Stack) SetTop(v View) {
	s.views[len(s.views)-1] = v
}

// Pop removes the current top view. The stack must have at least two
// entries; debug builds assert this.
func (s *Stack) Pop() {
	assert.True(len(s.views) >= 2, "view: pop on a stack with no child view")
	s.views = s.views[:len(s.views)-1]
}

// SlideTo mutates the current top view in place, relative to the
// second-from-top (unzoomed) view, to address the block of size blksz
// starting at position. This is how PartM/N/K walk a dimension without
// repeated push/pop churn.
func (s *Stack) SlideTo(position, blksz int) {
	n := len(s.views)
	assert.True(n >= 2, "view: slide on a stack with no child view")

	unzoomed := s.views[n-2]
	iterSize, padding := unzoomed.ZoomedSizeAndPadding(position, blksz)

	top := &s.views[n-1]
	top.IterSize = iterSize
	top.Padding = padding
	top.Offset = unzoomed.Offset + position
}

// CloneTop returns a new single-entry stack copying only the current top
// view (offset, padding, iter_size all preserved). This is used by
// make_alias: an alias only ever needs to address the sub-matrix its
// producer currently has in view, not the producer's whole view history.
//
// The Rust source this module was ported from set the alias's padding
// equal to its offset instead of copying the true padding — almost
// certainly a bug, since nothing else in the source depends on that
// specific value. This implementation copies the true padding.
func (s *Stack) CloneTop() *Stack {
	top := s.Top()
	return &Stack{views: []View{{Offset: top.Offset, Padding: top.Padding, IterSize: top.IterSize}}}
}
