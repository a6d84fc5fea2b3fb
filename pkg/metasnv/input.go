package metasnv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// bamExt is the extension of input alignment files.
const bamExt = ".bam"

// FindBAMs returns the BAM files of dir, sorted by file name.
func FindBAMs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), bamExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}
