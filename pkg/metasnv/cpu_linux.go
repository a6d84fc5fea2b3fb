//go:build linux

package metasnv

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// detectOptimalWorkers counts the fast cores of a hybrid CPU from
// /proc/cpuinfo, falling back to all logical CPUs.
func detectOptimalWorkers() int {
	if n := detectPerfCoresLinux(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// detectPerfCoresLinux returns the number of physical cores whose clock is
// within 10% of the average, or 0 when the cores look homogeneous.
func detectPerfCoresLinux() int {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	// Highest frequency seen per physical core
	coreFreq := make(map[int]float64)
	coreID := -1

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "processor":
			coreID = -1
		case "core id":
			if id, err := strconv.Atoi(value); err == nil {
				coreID = id
			}
		case "cpu MHz":
			freq, err := strconv.ParseFloat(value, 64)
			if err != nil || coreID < 0 {
				continue
			}
			if freq > coreFreq[coreID] {
				coreFreq[coreID] = freq
			}
		}
	}

	if len(coreFreq) <= 2 {
		return 0
	}

	var sum float64
	for _, f := range coreFreq {
		sum += f
	}
	avg := sum / float64(len(coreFreq))

	fast := 0
	for _, f := range coreFreq {
		if f >= avg*0.9 {
			fast++
		}
	}
	if fast > 0 && fast < len(coreFreq) {
		return fast
	}
	return 0
}
