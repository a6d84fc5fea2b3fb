//go:build !darwin && !linux

package metasnv

// detectSystemMemory reports nothing so callers use their defaults
func detectSystemMemory() (total int64, available int64) {
	return 0, 0
}
