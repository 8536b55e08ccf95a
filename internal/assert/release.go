//go:build !gemmdebug

package assert

func assertTrue(cond bool, msg string) {}
