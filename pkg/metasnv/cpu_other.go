//go:build !darwin && !linux

package metasnv

import "runtime"

// detectOptimalWorkers falls back to all logical CPUs
func detectOptimalWorkers() int {
	return runtime.NumCPU()
}
