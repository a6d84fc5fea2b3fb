package metasnv_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
	"github.com/scttfrdmn/metasnv-go/pkg/metasnv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoad builds a one-reference sample named after the file.
func fakeLoad(ctx context.Context, path string) (*coverage.SampleSet, error) {
	refs := []coverage.Reference{{Name: "A", Length: 1}}
	s, err := coverage.NewSampleSet(coverage.SampleName(path), refs)
	if err != nil {
		return nil, err
	}
	track, err := s.Get("A")
	if err != nil {
		return nil, err
	}
	track.AddCoverage(1, 1)
	return s, nil
}

func samplePaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		// Reverse order so the pool has to sort
		paths[i] = filepath.Join("/in", fmt.Sprintf("s%02d.bam", n-i))
	}
	return paths
}

func TestLoadSamplesSorted(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprint(workers), func(t *testing.T) {
			samples, err := metasnv.LoadSamples(context.Background(), samplePaths(10), workers, fakeLoad)
			require.NoError(t, err)
			require.Len(t, samples, 10)
			for i, s := range samples {
				assert.Equal(t, fmt.Sprintf("s%02d", i+1), s.Name())
			}
		})
	}
}

func TestLoadSamplesEmpty(t *testing.T) {
	_, err := metasnv.LoadSamples(context.Background(), nil, 2, fakeLoad)
	assert.True(t, errors.Is(err, metasnv.ErrNoSamples))
}

func TestLoadSamplesFailure(t *testing.T) {
	boom := errors.New("truncated file")
	var calls int32
	load := func(ctx context.Context, path string) (*coverage.SampleSet, error) {
		atomic.AddInt32(&calls, 1)
		if filepath.Base(path) == "s05.bam" {
			return nil, boom
		}
		return fakeLoad(ctx, path)
	}

	samples, err := metasnv.LoadSamples(context.Background(), samplePaths(10), 1, load)
	require.Error(t, err)
	assert.Nil(t, samples)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "s05.bam")
	// The failure stops the single worker before the rest of the queue
	assert.Less(t, int(atomic.LoadInt32(&calls)), 10)
}

func TestLoadSamplesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	load := func(ctx context.Context, path string) (*coverage.SampleSet, error) {
		cancel()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Second):
			return fakeLoad(ctx, path)
		}
	}

	_, err := metasnv.LoadSamples(ctx, samplePaths(4), 2, load)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewPoolDefaultsWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, metasnv.NewPool(0, fakeLoad).Workers(), 1)
	assert.Equal(t, 5, metasnv.NewPool(5, fakeLoad).Workers())
}
