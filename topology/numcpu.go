package topology

import "runtime"

func numCPU() int {
	return runtime.NumCPU()
}
