package metasnv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/grailbio/base/log"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
)

// ErrNoSamples is returned when a run has nothing to aggregate.
var ErrNoSamples = errors.New("no samples")

// LoadFunc builds the coverage of one alignment file. It must return
// promptly once ctx is cancelled.
type LoadFunc func(ctx context.Context, path string) (*coverage.SampleSet, error)

// loadJob is one alignment file to load
type loadJob struct {
	index int
	path  string
}

// loadResult is a loaded sample or the error that stopped it
type loadResult struct {
	index  int
	path   string
	sample *coverage.SampleSet
	err    error
}

// Pool loads samples with a fixed number of workers. Workers share nothing
// but the job and result channels.
type Pool struct {
	workers      int
	load         LoadFunc
	showProgress bool
}

// NewPool creates a pool of workers running load. workers <= 0 selects the
// detected performance core count.
func NewPool(workers int, load LoadFunc) *Pool {
	if workers <= 0 {
		workers = detectOptimalWorkers()
	}
	return &Pool{workers: workers, load: load, showProgress: true}
}

// Workers returns the number of parallel workers.
func (p *Pool) Workers() int { return p.workers }

// Load builds one sample per path and returns them sorted by sample name,
// whatever the worker count or completion order. The first failure cancels
// the remaining work and is returned with the offending path.
func (p *Pool) Load(ctx context.Context, paths []string) ([]*coverage.SampleSet, error) {
	if len(paths) == 0 {
		return nil, ErrNoSamples
	}

	workers := p.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan loadJob)
	results := make(chan loadResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(runCtx, &wg, jobs, results)
	}

	// Feed jobs until done or cancelled
	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- loadJob{index: i, path: path}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	samples := make([]*coverage.SampleSet, len(paths))
	done := 0
	var firstErr error

	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to load %s: %w", result.path, result.err)
				cancel()
			}
			continue
		}
		samples[result.index] = result.sample
		done++
		if p.showProgress {
			log.Printf("loaded %s (%d/%d, elapsed %s)", result.sample.Name(), done, len(paths),
				formatDuration(time.Since(start)))
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortSamples(samples)
	return samples, nil
}

// worker loads jobs until the job channel closes.
func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan loadJob, results chan<- loadResult) {
	defer wg.Done()

	for job := range jobs {
		result := loadResult{index: job.index, path: job.path}
		if err := ctx.Err(); err != nil {
			result.err = err
		} else {
			result.sample, result.err = p.load(ctx, job.path)
		}
		results <- result
	}
}

// LoadSamples loads paths with a pool of the given size.
func LoadSamples(ctx context.Context, paths []string, workers int, load LoadFunc) ([]*coverage.SampleSet, error) {
	return NewPool(workers, load).Load(ctx, paths)
}

// sortSamples orders samples by name.
func sortSamples(samples []*coverage.SampleSet) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Name() < samples[j].Name()
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
