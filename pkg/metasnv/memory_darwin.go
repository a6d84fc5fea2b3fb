//go:build darwin

package metasnv

import "syscall"

// detectSystemMemory reads hw.memsize. Available memory is estimated as 75%
// of the total.
func detectSystemMemory() (total int64, available int64) {
	raw, err := syscall.Sysctl("hw.memsize")
	if err != nil {
		return 0, 0
	}

	var size uint64
	for i := 0; i < len(raw) && i < 8; i++ {
		size |= uint64(raw[i]) << (uint(i) * 8)
	}
	total = int64(size)
	return total, total * 3 / 4
}
