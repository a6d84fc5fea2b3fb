package coverage

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// cacheVersion is bumped whenever the cached layout changes.
const cacheVersion = 1

// CacheExt is the file extension of a cached sample.
const CacheExt = ".cov.zst"

type cachedTrack struct {
	Reference string
	Length    int
	Positions []int
	Depths    []int
}

type cachedSample struct {
	Version int
	Name    string
	Tracks  []cachedTrack
}

// WriteCache writes a zstd-compressed snapshot of s to w.
func WriteCache(w io.Writer, s *SampleSet) error {
	snapshot := cachedSample{
		Version: cacheVersion,
		Name:    s.name,
		Tracks:  make([]cachedTrack, 0, len(s.names)),
	}
	for _, name := range s.names {
		t := s.tracks[name]
		snapshot.Tracks = append(snapshot.Tracks, cachedTrack{
			Reference: name,
			Length:    t.length,
			Positions: t.positions,
			Depths:    t.depths,
		})
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := gob.NewEncoder(encoder).Encode(&snapshot); err != nil {
		encoder.Close()
		return fmt.Errorf("failed to encode coverage of %s: %w", s.name, err)
	}
	return encoder.Close()
}

// ReadCache reads a sample written by WriteCache.
func ReadCache(r io.Reader) (*SampleSet, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var snapshot cachedSample
	if err := gob.NewDecoder(decoder).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode coverage cache: %w", err)
	}
	if snapshot.Version != cacheVersion {
		return nil, fmt.Errorf("coverage cache of %s has version %d, want %d", snapshot.Name, snapshot.Version, cacheVersion)
	}

	refs := make([]Reference, len(snapshot.Tracks))
	for i, ct := range snapshot.Tracks {
		refs[i] = Reference{Name: ct.Reference, Length: ct.Length}
	}
	s, err := NewSampleSet(snapshot.Name, refs)
	if err != nil {
		return nil, err
	}
	for _, ct := range snapshot.Tracks {
		if len(ct.Positions) != len(ct.Depths) {
			return nil, fmt.Errorf("coverage cache of %s: reference %s has %d positions and %d depths",
				snapshot.Name, ct.Reference, len(ct.Positions), len(ct.Depths))
		}
		t := s.tracks[ct.Reference]
		for i, pos := range ct.Positions {
			t.AddCoverage(pos, ct.Depths[i])
		}
	}
	return s, nil
}
