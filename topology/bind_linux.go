//go:build linux

package topology

import "golang.org/x/sys/unix"

// bindCurrentThread uses sched_setaffinity to pin the calling OS thread to
// a single core, the same primitive the retrieved pack's hwloc-based
// source wraps CPUBIND_THREAD around.
func bindCurrentThread(id int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(id)
	// Passing pid 0 targets the calling thread, not the whole process.
	_ = unix.SchedSetaffinity(0, &set)
}
