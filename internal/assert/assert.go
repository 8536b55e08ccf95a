// Package assert provides the module-wide debug_assert! equivalent: a check
// that is compiled out entirely in normal builds and only pays its cost
// when a caller opts in with the gemmdebug build tag. The algorithm tree is
// statically typed, so a release build trusts it is wired correctly; these
// checks exist to catch bugs in stage implementations, not to validate user
// input (that still panics unconditionally — see blasapi).
package assert

// True panics with msg when cond is false, in gemmdebug builds only.
func True(cond bool, msg string) {
	assertTrue(cond, msg)
}
