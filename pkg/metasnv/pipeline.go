// Package metasnv runs the coverage stage of the pipeline: it scaffolds the
// project directory, computes or reloads per-sample coverage and writes the
// cross-sample depth and breadth matrices.
package metasnv

import (
	"context"
	"fmt"
	"time"

	"github.com/grailbio/base/log"
	"github.com/scttfrdmn/metasnv-go/pkg/bam"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
)

// Run executes one coverage run. Nothing under the matrix paths is written
// unless every sample loads and shares the same references.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	storage, err := NewStorage(ctx, cfg.ProjectDir)
	if err != nil {
		return fmt.Errorf("failed to open project directory: %w", err)
	}
	ws := NewWorkspace(storage, cfg.ProjectName())
	if err := ws.Create(); err != nil {
		return err
	}

	start := time.Now()
	var samples []*coverage.SampleSet
	if cfg.UsePrevCov {
		samples, err = ws.LoadCoverage(ctx)
		if err != nil {
			return err
		}
		log.Printf("reloaded coverage of %d samples", len(samples))
	} else {
		samples, err = computeCoverage(ctx, cfg, ws)
		if err != nil {
			return err
		}
	}

	if err := ws.WriteBedHeader(ctx, samples[0].References()); err != nil {
		return fmt.Errorf("failed to write %s: %w", bedHeaderFile, err)
	}
	if err := ws.WriteMatrices(ctx, samples); err != nil {
		return err
	}

	log.Printf("coverage of %d samples done in %s", len(samples), formatDuration(time.Since(start)))
	return nil
}

// computeCoverage loads every BAM of the input directory and caches the
// result in the workspace.
func computeCoverage(ctx context.Context, cfg *Config, ws *Workspace) ([]*coverage.SampleSet, error) {
	paths, err := FindBAMs(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no BAM files in %s", ErrNoSamples, cfg.InputDir)
	}

	refs, err := bam.ReadReferences(paths[0])
	if err != nil {
		return nil, err
	}
	var total int64
	for _, ref := range refs {
		total += int64(ref.Length)
	}
	CheckMemory(total, len(paths))

	log.Printf("computing coverage of %d samples with %d workers", len(paths), cfg.Threads)

	opts := bam.Options{MinMapQ: cfg.MinMapQ}
	pool := NewPool(cfg.Threads, func(ctx context.Context, path string) (*coverage.SampleSet, error) {
		return bam.LoadSample(ctx, path, opts)
	})
	pool.showProgress = cfg.ShowProgress

	samples, err := pool.Load(ctx, paths)
	if err != nil {
		return nil, err
	}

	for _, s := range samples {
		if err := ws.SaveCoverage(ctx, s); err != nil {
			return nil, err
		}
	}
	if err := ws.WriteSampleList(ctx, paths); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", sampleListFile, err)
	}
	return samples, nil
}
