package bam

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
)

// excludedFlags are the records left out of depth, as samtools depth does.
const excludedFlags = sam.Unmapped | sam.Secondary | sam.QCFail | sam.Duplicate

// checkInterval is the number of records or positions between context checks.
const checkInterval = 1 << 14

// Options filters the records counted toward depth.
type Options struct {
	MinMapQ int // Minimum mapping quality (default: 0)
}

// File is the depth stream of a BAM file. It reports every position of
// every declared reference, in header order, zero-depth positions and
// references without reads included.
type File struct {
	Path    string
	Options Options
}

// Stream implements coverage.DepthStream.
func (f File) Stream(ctx context.Context, fn coverage.DepthFunc) error {
	fh, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open BAM file: %w", err)
	}
	defer fh.Close()

	br, err := bam.NewReader(fh, 1)
	if err != nil {
		return fmt.Errorf("failed to create BAM reader for %s: %w", f.Path, err)
	}
	defer br.Close()

	refs := br.Header().Refs()

	// Depth changes per reference, allocated on the first counted read
	deltas := make([][]int32, len(refs))

	n := 0
	for {
		record, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read BAM record from %s: %w", f.Path, err)
		}

		n++
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if !f.Options.counts(record) {
			continue
		}
		id := record.Ref.ID()
		if id < 0 || id >= len(refs) {
			continue
		}
		if deltas[id] == nil {
			deltas[id] = make([]int32, refs[id].Len()+1)
		}
		addAlignedBlocks(deltas[id], record)
	}

	for i, ref := range refs {
		name := ref.Name()
		delta := deltas[i]
		depth := 0
		for pos := 0; pos < ref.Len(); pos++ {
			if pos%checkInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if delta != nil {
				depth += int(delta[pos])
			}
			if err := fn(name, pos+1, depth); err != nil {
				return err
			}
		}
		// Release as soon as the reference has been reported
		deltas[i] = nil
	}

	return nil
}

// counts reports whether a record contributes to depth.
func (o Options) counts(r *sam.Record) bool {
	if r.Ref == nil || r.Flags&excludedFlags != 0 {
		return false
	}
	return int(r.MapQ) >= o.MinMapQ
}

// addAlignedBlocks records the reference blocks a read's bases align to.
// Deletions and skipped regions advance the reference cursor without
// adding depth.
func addAlignedBlocks(delta []int32, r *sam.Record) {
	limit := len(delta) - 1
	pos := r.Pos
	for _, op := range r.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			start, end := clamp(pos, limit), clamp(pos+n, limit)
			if start < end {
				delta[start]++
				delta[end]--
			}
			pos += n
		case sam.CigarDeletion, sam.CigarSkipped:
			pos += n
		}
	}
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
