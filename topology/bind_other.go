//go:build !linux

package topology

// bindCurrentThread is a no-op outside Linux: there is no portable
// equivalent to sched_setaffinity wired into this module, and pinning is
// advisory, not a correctness requirement.
func bindCurrentThread(id int) {}
