package coverage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Reference is a reference sequence declared by an alignment file header.
type Reference struct {
	Name   string
	Length int
}

// DepthFunc receives one depth observation at a 1-based position.
type DepthFunc func(reference string, pos, depth int) error

// DepthStream produces the per-base depth of an alignment file. A complete
// stream reports every position of every reference, zero-depth included.
type DepthStream interface {
	Stream(ctx context.Context, fn DepthFunc) error
}

// cancelCheckInterval is the number of positions between context checks.
const cancelCheckInterval = 1 << 12

// SampleSet holds the coverage tracks of one sample, keyed by reference.
// It is read-only once built.
type SampleSet struct {
	name   string
	names  []string
	tracks map[string]*Track
}

// NewSampleSet creates a sample with one empty track per reference.
func NewSampleSet(name string, refs []Reference) (*SampleSet, error) {
	s := &SampleSet{
		name:   name,
		names:  make([]string, 0, len(refs)),
		tracks: make(map[string]*Track, len(refs)),
	}
	for _, ref := range refs {
		if ref.Name == "" {
			return nil, fmt.Errorf("%w: empty reference name in sample %s", ErrInvalidReference, name)
		}
		if ref.Length <= 0 {
			return nil, fmt.Errorf("%w: reference %s in sample %s has length %d", ErrInvalidReference, ref.Name, name, ref.Length)
		}
		if _, ok := s.tracks[ref.Name]; ok {
			return nil, fmt.Errorf("%w: reference %s declared twice in sample %s", ErrInvalidReference, ref.Name, name)
		}
		s.names = append(s.names, ref.Name)
		s.tracks[ref.Name] = NewTrack(name, ref.Name, ref.Length)
	}
	return s, nil
}

// Build creates a sample from its reference table and routes every
// observation of the depth stream to the matching track.
func Build(ctx context.Context, name string, refs []Reference, stream DepthStream) (*SampleSet, error) {
	s, err := NewSampleSet(name, refs)
	if err != nil {
		return nil, err
	}

	n := 0
	err = stream.Stream(ctx, func(ref string, pos, depth int) error {
		n++
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		t, ok := s.tracks[ref]
		if !ok {
			return fmt.Errorf("%w: depth reported for %s, not declared by sample %s", ErrReferenceNotFound, ref, name)
		}
		t.AddCoverage(pos, depth)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SampleName derives a sample name from an alignment file path: the base
// name without its last extension.
func SampleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Name returns the sample name.
func (s *SampleSet) Name() string { return s.name }

// Get returns the track of a reference.
func (s *SampleSet) Get(ref string) (*Track, error) {
	t, ok := s.tracks[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s in sample %s", ErrReferenceNotFound, ref, s.name)
	}
	return t, nil
}

// ReferenceNames returns the declared reference names in declaration order.
func (s *SampleSet) ReferenceNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// References returns the declared reference table in declaration order.
func (s *SampleSet) References() []Reference {
	refs := make([]Reference, len(s.names))
	for i, name := range s.names {
		refs[i] = Reference{Name: name, Length: s.tracks[name].Length()}
	}
	return refs
}

func (s *SampleSet) String() string {
	return fmt.Sprintf("sample %s (%d references)", s.name, len(s.names))
}
