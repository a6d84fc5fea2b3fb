// Package bam reads reference tables and per-base depth from BAM files.
package bam

import (
	"context"
	"fmt"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/grailbio/base/log"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
)

// ReadReferences returns the reference table declared by a BAM header, in
// declaration order. The file is closed before returning.
func ReadReferences(path string) ([]coverage.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open BAM file: %w", err)
	}
	defer f.Close()

	br, err := bam.NewReader(f, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create BAM reader for %s: %w", path, err)
	}
	defer br.Close()

	refs := br.Header().Refs()
	table := make([]coverage.Reference, len(refs))
	for i, ref := range refs {
		table[i] = coverage.Reference{Name: ref.Name(), Length: ref.Len()}
	}
	return table, nil
}

// LoadSample builds the coverage of one BAM file: the header pass declares
// the references, then the depth pass fills them. Each pass opens and
// closes its own handle.
func LoadSample(ctx context.Context, path string, opts Options) (*coverage.SampleSet, error) {
	refs, err := ReadReferences(path)
	if err != nil {
		return nil, err
	}

	name := coverage.SampleName(path)
	log.Debug.Printf("%s: %d references declared", name, len(refs))

	sample, err := coverage.Build(ctx, name, refs, File{Path: path, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("failed to compute coverage of %s: %w", path, err)
	}
	return sample, nil
}
