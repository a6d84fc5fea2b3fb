package coverage

import "fmt"

// Track holds per-position read depth for one reference within one sample.
//
// Positions are kept in insertion order. Breadth and mean depth are only
// meaningful when every position of the reference has been recorded,
// including zero-depth positions.
type Track struct {
	sample    string
	reference string
	length    int

	positions []int
	depths    []int

	// index maps a position to its slot. It is only built once a position
	// arrives out of ascending order.
	index map[int]int
}

// NewTrack creates an empty track for a reference of the given length.
func NewTrack(sample, reference string, length int) *Track {
	return &Track{
		sample:    sample,
		reference: reference,
		length:    length,
	}
}

// Sample returns the owning sample name.
func (t *Track) Sample() string { return t.sample }

// Reference returns the reference sequence name.
func (t *Track) Reference() string { return t.reference }

// Length returns the declared reference length.
func (t *Track) Length() int { return t.length }

// Len returns the number of recorded positions.
func (t *Track) Len() int { return len(t.positions) }

// AddCoverage records the depth at a 1-based position. Recording a position
// twice keeps its original slot and the last depth.
func (t *Track) AddCoverage(pos, depth int) {
	n := len(t.positions)
	if t.index == nil && (n == 0 || pos > t.positions[n-1]) {
		t.positions = append(t.positions, pos)
		t.depths = append(t.depths, depth)
		return
	}

	if t.index == nil {
		t.index = make(map[int]int, n+1)
		for i, p := range t.positions {
			t.index[p] = i
		}
	}
	if i, ok := t.index[pos]; ok {
		t.depths[i] = depth
		return
	}
	t.index[pos] = n
	t.positions = append(t.positions, pos)
	t.depths = append(t.depths, depth)
}

// Positions returns the recorded positions in insertion order.
func (t *Track) Positions() []int {
	out := make([]int, len(t.positions))
	copy(out, t.positions)
	return out
}

// Depths returns the recorded depth values in insertion order.
func (t *Track) Depths() []int {
	out := make([]int, len(t.depths))
	copy(out, t.depths)
	return out
}

// Depth summarizes the recorded depth values. It fails with
// ErrNoPositions on an empty track.
func (t *Track) Depth(stat Statistic) (float64, error) {
	if !stat.valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedStatistic, stat)
	}

	var (
		v   float64
		err error
	)
	switch stat {
	case Mean:
		v, err = mean(t.depths)
	case Median:
		v, err = median(t.depths)
	}
	if err != nil {
		return 0, fmt.Errorf("%s depth of %s: %w", stat, t, err)
	}
	return v, nil
}

// Breadth returns the number of recorded positions with depth at or above
// threshold, divided by the declared reference length.
func (t *Track) Breadth(threshold int) float64 {
	if t.length <= 0 {
		return 0
	}
	covered := 0
	for _, d := range t.depths {
		if d >= threshold {
			covered++
		}
	}
	return float64(covered) / float64(t.length)
}

func (t *Track) String() string {
	return fmt.Sprintf("%s:%s", t.sample, t.reference)
}
