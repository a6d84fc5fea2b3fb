//go:build linux

package metasnv

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// detectSystemMemory reads MemTotal and MemAvailable from /proc/meminfo.
// Kernels without MemAvailable get MemFree + Buffers + Cached.
func detectSystemMemory() (total int64, available int64) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer file.Close()

	// Values are reported in kB
	fields := make(map[string]int64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		value, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		fields[strings.TrimSuffix(parts[0], ":")] = value * KB
	}

	total = fields["MemTotal"]
	available, ok := fields["MemAvailable"]
	if !ok {
		available = fields["MemFree"] + fields["Buffers"] + fields["Cached"]
	}
	return total, available
}
