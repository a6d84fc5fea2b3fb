//go:build darwin

package metasnv

import (
	"runtime"
	"syscall"
)

// detectOptimalWorkers prefers Apple Silicon performance cores, then
// physical cores, then logical CPUs.
func detectOptimalWorkers() int {
	for _, name := range []string{"hw.perflevel0.physicalcpu", "hw.physicalcpu"} {
		if n := sysctlCount(name); n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// sysctlCount reads a small little-endian integer sysctl value.
func sysctlCount(name string) int {
	raw, err := syscall.Sysctl(name)
	if err != nil || len(raw) == 0 {
		return 0
	}
	n := int(raw[0])
	if len(raw) > 1 {
		n |= int(raw[1]) << 8
	}
	return n
}
