package coverage_test

import (
	"math/rand"
	"testing"

	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrack() *coverage.Track {
	t := coverage.NewTrack("sample", "ref", 4)
	for i, d := range []int{10, 12, 14, 14} {
		t.AddCoverage(i+1, d)
	}
	return t
}

func TestTrackPositions(t *testing.T) {
	track := newTestTrack()
	assert.Equal(t, []int{1, 2, 3, 4}, track.Positions())
	assert.Equal(t, 4, track.Len())
	assert.Equal(t, "ref", track.Reference())
	assert.Equal(t, "sample", track.Sample())
}

func TestTrackDepth(t *testing.T) {
	track := newTestTrack()

	mean, err := track.Depth(coverage.Mean)
	require.NoError(t, err)
	assert.Equal(t, 12.5, mean)

	median, err := track.Depth(coverage.Median)
	require.NoError(t, err)
	assert.Equal(t, 13.0, median)

	assert.Equal(t, []int{10, 12, 14, 14}, track.Depths())
}

func TestTrackMedianOdd(t *testing.T) {
	track := coverage.NewTrack("s", "r", 3)
	track.AddCoverage(1, 7)
	track.AddCoverage(2, 1)
	track.AddCoverage(3, 3)

	median, err := track.Depth(coverage.Median)
	require.NoError(t, err)
	assert.Equal(t, 3.0, median)
	// Depths stays in insertion order after a median
	assert.Equal(t, []int{7, 1, 3}, track.Depths())
}

func TestTrackUnsupportedStatistic(t *testing.T) {
	for _, track := range []*coverage.Track{newTestTrack(), coverage.NewTrack("s", "r", 10)} {
		_, err := track.Depth(coverage.Statistic(42))
		require.ErrorIs(t, err, coverage.ErrUnsupportedStatistic)
	}

	_, err := coverage.ParseStatistic("bogus-mode")
	require.ErrorIs(t, err, coverage.ErrUnsupportedStatistic)
}

func TestTrackEmpty(t *testing.T) {
	track := coverage.NewTrack("s", "r", 10)

	_, err := track.Depth(coverage.Mean)
	require.ErrorIs(t, err, coverage.ErrNoPositions)
	_, err = track.Depth(coverage.Median)
	require.ErrorIs(t, err, coverage.ErrNoPositions)

	assert.Equal(t, 0.0, track.Breadth(1))
	assert.Empty(t, track.Depths())
}

func TestTrackBreadth(t *testing.T) {
	track := newTestTrack()
	assert.Equal(t, 1.0, track.Breadth(1))
	assert.Equal(t, 0.75, track.Breadth(12))
	assert.Equal(t, 0.5, track.Breadth(14))
	assert.Equal(t, 0.0, track.Breadth(15))
}

func TestTrackBreadthUsesDeclaredLength(t *testing.T) {
	// Only half of the reference was reported
	track := coverage.NewTrack("s", "r", 8)
	for pos := 1; pos <= 4; pos++ {
		track.AddCoverage(pos, 3)
	}
	assert.Equal(t, 0.5, track.Breadth(1))
}

func TestTrackLastWriteWins(t *testing.T) {
	track := coverage.NewTrack("s", "r", 3)
	track.AddCoverage(1, 5)
	track.AddCoverage(2, 6)
	track.AddCoverage(3, 7)
	track.AddCoverage(2, 0)
	track.AddCoverage(3, 9)

	assert.Equal(t, []int{1, 2, 3}, track.Positions())
	assert.Equal(t, []int{5, 0, 9}, track.Depths())
}

func TestTrackOutOfOrderPositions(t *testing.T) {
	track := coverage.NewTrack("s", "r", 5)
	track.AddCoverage(3, 1)
	track.AddCoverage(1, 2)
	track.AddCoverage(5, 3)
	track.AddCoverage(1, 4)
	track.AddCoverage(2, 5)

	assert.Equal(t, []int{3, 1, 5, 2}, track.Positions())
	assert.Equal(t, []int{1, 4, 3, 5}, track.Depths())
}

func TestTrackStatisticsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(50)
		depths := make([]int, n)
		sum := 0
		for i := range depths {
			depths[i] = rng.Intn(100)
			sum += depths[i]
		}

		forward := coverage.NewTrack("s", "r", n)
		for i, d := range depths {
			forward.AddCoverage(i+1, d)
		}
		shuffled := coverage.NewTrack("s", "r", n)
		for _, i := range rng.Perm(n) {
			shuffled.AddCoverage(i+1, depths[i])
		}

		mean, err := forward.Depth(coverage.Mean)
		require.NoError(t, err)
		assert.Equal(t, float64(sum)/float64(n), mean)

		m1, err := forward.Depth(coverage.Median)
		require.NoError(t, err)
		m2, err := shuffled.Depth(coverage.Median)
		require.NoError(t, err)
		assert.Equal(t, m1, m2)

		prev := forward.Breadth(0)
		for threshold := 1; threshold <= 101; threshold++ {
			b := forward.Breadth(threshold)
			assert.LessOrEqual(t, b, prev)
			prev = b
		}
	}
}
