// Package ctrl holds the composable control-tree stages: partition, pack,
// parallel-dispatch, and the root thread-spawn stage. Every stage
// implements GemmNode and nests by holding its single child as a field,
// so a full algorithm is one concrete, statically assembled type with no
// virtual dispatch in the hot path.
package ctrl

import (
	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// GemmNode is the uniform stage contract every control-tree node
// implements. A, B, C are the matrix capability sets this node and its
// descendants require — most stages only need matrix.Mat[T], leaf stages
// additionally require matrix.RoCM[T].
type GemmNode[T matrix.Scalar, A matrix.Mat[T], B matrix.Mat[T], C matrix.Mat[T]] interface {
	// Run executes this stage and its subtree, mutating A/B/C's view
	// stacks and C's buffer. Any push this stage performs against a view
	// stack it pops before returning: Run is idempotent with respect to
	// view state, not with respect to buffer contents.
	Run(a A, b B, c C, thr *threadteam.Info[T])

	// HierarchyDescription returns this stage's own step, if any,
	// concatenated ahead of its child's description. Pure and stable
	// across calls: it depends only on the tree's static shape.
	HierarchyDescription() []matrix.AlgorithmStep
}
