// Package pack implements the PackA/PackB/UnpackC control-tree stages:
// each owns a persistent destination buffer in the child's preferred
// layout, resizes and reshares it cooperatively across the current thread
// team, then copies (and, for UnpackC, copies back) the operand through
// it.
package pack

import (
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// cooperativeRange splits a dimension of totalRows rows into contiguous,
// roughly equal chunks across the current thread team — the same fixed
// distribution ParallelN uses, applied here to the packing matrix's
// slow-varying (Y) dimension.
func cooperativeRange[T any](thr *threadteam.Info[T], totalRows int) (start, end int) {
	n := thr.NThreads()
	chunk := (totalRows + n - 1) / n
	start = thr.ThreadID * chunk
	end = start + chunk
	if start > totalRows {
		start = totalRows
	}
	if end > totalRows {
		end = totalRows
	}
	return start, end
}

// copyZeroFill copies src into dst row by row, a disjoint chunk of rows
// per worker, zero-filling any column or row that lies in src's logical
// padding so a register-blocked kernel can always read a full tile.
func copyZeroFill[T matrix.Scalar](thr *threadteam.Info[T], src, dst matrix.Mat[T]) {
	h, w := src.IterHeight(), src.IterWidth()
	totalH := h + src.LogicalHPadding()
	totalW := w + src.LogicalWPadding()

	start, end := cooperativeRange[T](thr, totalH)
	var zero T
	for y := start; y < end; y++ {
		if y < h {
			for x := 0; x < w; x++ {
				dst.Set(y, x, src.Get(y, x))
			}
			for x := w; x < totalW; x++ {
				dst.Set(y, x, zero)
			}
			continue
		}
		for x := 0; x < totalW; x++ {
			dst.Set(y, x, zero)
		}
	}
}

// copyBack writes the logical (non-padding) region of src into dst — the
// inverse of copyZeroFill, used by UnpackC to drain a packed C tile back
// to the caller's general-layout buffer.
func copyBack[T matrix.Scalar](thr *threadteam.Info[T], src, dst matrix.Mat[T]) {
	h, w := dst.IterHeight(), dst.IterWidth()
	start, end := cooperativeRange[T](thr, h)
	for y := start; y < end; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, x, src.Get(y, x))
		}
	}
}

// adjustCapacity runs the capacity-adjustment protocol shared by every
// Pack stage: thread 0 reallocates when the packing matrix's capacity is
// insufficient, every other thread only updates its local bookkeeping,
// and the fresh buffer is broadcast so every worker aliases the same
// allocation rather than each allocating its own.
func adjustCapacity[T matrix.Scalar, P matrix.ResizableBuffer[T, P]](thr *threadteam.Info[T], packed P, src matrix.Mat[T]) {
	needed := packed.CapacityFor(src)
	if packed.Capacity() >= needed {
		return
	}
	if thr.ThreadID == 0 {
		packed.AcquireBufferFor(needed)
	} else {
		packed.SetCapacity(needed)
	}
	packed.SendAlias(thr)
}
