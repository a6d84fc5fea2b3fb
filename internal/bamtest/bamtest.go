// Package bamtest writes small BAM files for tests.
package bamtest

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Ref declares a reference sequence in the BAM header.
type Ref struct {
	Name   string
	Length int
}

// Read is one alignment record. Pos is 0-based.
type Read struct {
	Name  string
	Ref   string
	Pos   int
	Cigar string
	Flags sam.Flags
	MapQ  byte
}

// Write creates a BAM file at path holding reads, or fails the test.
func Write(t testing.TB, path string, refs []Ref, reads []Read) {
	t.Helper()
	if err := write(path, refs, reads); err != nil {
		t.Fatalf("bamtest: %v", err)
	}
}

// Uniform returns n reads covering the whole of ref with one match block.
func Uniform(ref Ref, n int) []Read {
	reads := make([]Read, n)
	for i := range reads {
		reads[i] = Read{
			Name:  fmt.Sprintf("%s_r%d", ref.Name, i),
			Ref:   ref.Name,
			Pos:   0,
			Cigar: fmt.Sprintf("%dM", ref.Length),
			MapQ:  60,
		}
	}
	return reads
}

func write(path string, refs []Ref, reads []Read) error {
	header, byName, err := newHeader(refs)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w, err := bam.NewWriter(f, header, 1)
	if err != nil {
		return fmt.Errorf("failed to create BAM writer: %w", err)
	}

	for _, read := range reads {
		record, err := newRecord(read, byName)
		if err != nil {
			w.Close()
			return fmt.Errorf("failed to convert read %s: %w", read.Name, err)
		}
		if err := w.Write(record); err != nil {
			w.Close()
			return fmt.Errorf("failed to write read: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close BAM writer: %w", err)
	}
	return f.Close()
}

func newHeader(refs []Ref) (*sam.Header, map[string]*sam.Reference, error) {
	samRefs := make([]*sam.Reference, 0, len(refs))
	byName := make(map[string]*sam.Reference, len(refs))
	for _, r := range refs {
		ref, err := sam.NewReference(r.Name, "", "", r.Length, nil, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create reference %s: %w", r.Name, err)
		}
		samRefs = append(samRefs, ref)
		byName[r.Name] = ref
	}

	header, err := sam.NewHeader(nil, samRefs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create header: %w", err)
	}
	header.SortOrder = sam.Unsorted
	return header, byName, nil
}

func newRecord(read Read, refs map[string]*sam.Reference) (*sam.Record, error) {
	ref, ok := refs[read.Ref]
	if !ok {
		return nil, fmt.Errorf("unknown reference %q", read.Ref)
	}

	cigar, err := sam.ParseCigar([]byte(read.Cigar))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CIGAR: %w", err)
	}

	// Sequence length follows the query-consuming operations
	n := 0
	for _, op := range cigar {
		n += op.Len() * op.Type().Consumes().Query
	}

	return &sam.Record{
		Name:    read.Name,
		Ref:     ref,
		Pos:     read.Pos,
		MapQ:    read.MapQ,
		Cigar:   cigar,
		Flags:   read.Flags,
		MateRef: nil,
		MatePos: -1,
		Seq:     sam.NewSeq(bytes.Repeat([]byte{'A'}, n)),
		Qual:    bytes.Repeat([]byte{30}, n),
	}, nil
}
