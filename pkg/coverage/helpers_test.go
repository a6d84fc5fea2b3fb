package coverage_test

import (
	"context"
	"testing"

	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
	"github.com/stretchr/testify/require"
)

type triple struct {
	ref        string
	pos, depth int
}

// sliceStream replays fixed depth observations.
type sliceStream []triple

func (s sliceStream) Stream(ctx context.Context, fn coverage.DepthFunc) error {
	for _, tr := range s {
		if err := fn(tr.ref, tr.pos, tr.depth); err != nil {
			return err
		}
	}
	return nil
}

// uniform reports depth at every position of ref.
func uniform(ref string, length, depth int) sliceStream {
	out := make(sliceStream, length)
	for i := range out {
		out[i] = triple{ref: ref, pos: i + 1, depth: depth}
	}
	return out
}

// buildSample builds a sample whose references carry a constant depth.
func buildSample(t *testing.T, name string, refs []coverage.Reference, depths map[string]int) *coverage.SampleSet {
	t.Helper()
	var stream sliceStream
	for _, ref := range refs {
		stream = append(stream, uniform(ref.Name, ref.Length, depths[ref.Name])...)
	}
	s, err := coverage.Build(context.Background(), name, refs, stream)
	require.NoError(t, err)
	return s
}

func ctxBackground() context.Context { return context.Background() }
