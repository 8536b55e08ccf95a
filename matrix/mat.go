package matrix

import "github.com/latticeforge/gemmtree/threadteam"

// Mat is the capability set every matrix backend implements: the stage
// contract (§4.1/§4.7 of SPEC_FULL.md) operates purely in terms of this
// interface, never a concrete backend, so a stage built against Mat works
// unmodified whether handed a general-stride matrix, a packed panel, or a
// hierarchical block-panel.
type Mat[T Scalar] interface {
	Get(y, x int) T
	Set(y, x int, v T)

	// Height/Width report the current top view's extent: every backend
	// returns the same value as IterHeight/IterWidth.
	Height() int
	Width() int

	// IterHeight/IterWidth report the current (possibly zoomed) view's
	// extent — what a stage should actually iterate over.
	IterHeight() int
	IterWidth() int

	LogicalHPadding() int
	LogicalWPadding() int

	Alpha() T
	SetAlpha(T)

	PushYSplit(start, end int)
	PushXSplit(start, end int)
	PopYSplit()
	PopXSplit()

	PushYView(blksz int) int
	PushXView(blksz int) int
	PopYView()
	PopXView()

	SlideYViewTo(y, blksz int)
	SlideXViewTo(x, blksz int)
}

// RoCM ("row or column major") is the leaf-facing capability a matrix
// backend must provide so KernelNM can address contiguous Mr/Nr register
// blocks without knowing which concrete backend it was handed. The name
// and shape follow the source's RoCM trait.
type RoCM[T Scalar] interface {
	Mat[T]

	// LeafRowStride/LeafColStride are the element strides of the
	// innermost (leaf) addressing: for a row-panel operand LeafRowStride
	// is 1, for a column-panel operand LeafColStride is 1, and for a
	// general matrix both are the matrix's own row/column strides.
	LeafRowStride() int
	LeafColStride() int

	// BlockRowStride/BlockColStride report the stride to advance by one
	// Mr (row) or Nr (column) register block at the given nesting level
	// (level 0 is the leaf itself).
	BlockRowStride(level, blksz int) int
	BlockColStride(level, blksz int) int

	// Data returns the full backing buffer (owner's or alias's) and
	// Offset the current view's element offset into it, so KernelNM can
	// slice out exactly the panel/tile it needs.
	Data() []T
	Offset() int
}

// ResizableBuffer is implemented by packing-matrix backends (row panel,
// column panel, hierarchical): the capacity management, cooperative
// broadcast-of-alias, and logical resize-to-match-source operations a Pack
// stage drives.
type ResizableBuffer[T Scalar, Self any] interface {
	Mat[T]

	Capacity() int
	SetCapacity(n int)
	CapacityFor(src Mat[T]) int
	AcquireBufferFor(n int)
	ResizeTo(src Mat[T])

	// MakeAlias/SendAlias implement the broadcast-of-freshly-allocated-
	// buffer protocol: thread 0 allocates and returns Self via MakeAlias
	// semantics embedded in the concrete type; every thread (including
	// thread 0, idempotently) installs the broadcast pointer with
	// SendAlias.
	SendAlias(thr *threadteam.Info[T])
}

// Aliasable is implemented by all four backends (General, RowPanel,
// ColumnPanel, Hierarch): SpawnThreads uses it to hand
// every worker goroutine its own aliased view of A, B, and C.
type Aliasable[T Scalar, Self any] interface {
	Mat[T]
	MakeAlias() Self
}
