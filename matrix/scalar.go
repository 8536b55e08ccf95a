// Package matrix implements the matrix view layer: the Mat capability set
// every backend satisfies, the three storage schemes described by the
// spec (general stride, row panel, column panel), and the hierarchical
// block-panel backend used by fully-nested algorithm assemblies.
package matrix

// Scalar is the element type constraint for every matrix backend and the
// micro-kernel ABI. Floating-point primitives are assumed throughout; this
// module specifies no integer or complex element types.
type Scalar interface {
	~float32 | ~float64
}
