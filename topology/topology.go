// Package topology is the thin collaborator interface SpawnThreads pins
// workers through: list the machine's cores, bind the calling OS thread to
// one. Nothing else about hardware topology is specified or used.
package topology

// CPUSet identifies a single core a thread can be bound to.
type CPUSet struct {
	id int
}

// ListCores returns one CPUSet per logical core visible to the process, in
// a stable order (core i is ListCores()[i]).
func ListCores() []CPUSet {
	n := numCPU()
	cores := make([]CPUSet, n)
	for i := range cores {
		cores[i] = CPUSet{id: i}
	}
	return cores
}

// BindCurrentThread pins the calling OS thread to cpu's core. The caller
// must have already locked itself to its OS thread (runtime.LockOSThread)
// for the binding to stick. Pinning is a placement hint: a failure to bind
// is not a correctness error, so implementations best-effort it.
func BindCurrentThread(cpu CPUSet) {
	bindCurrentThread(cpu.id)
}
