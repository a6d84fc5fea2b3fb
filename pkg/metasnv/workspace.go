package metasnv

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
)

const (
	covDir         = "cov"
	bedHeaderFile  = "bed_header"
	sampleListFile = "all_samples"
)

// projectDirs is the directory layout shared with the downstream
// splitting, calling and filtering stages.
var projectDirs = []string{
	covDir,
	"bestsplits",
	"snpCaller",
	"filtered",
	"filtered/pop",
	"filtered/ind",
	"distances",
}

// Workspace is a project directory.
type Workspace struct {
	storage Storage
	name    string
}

// NewWorkspace creates a workspace over storage. name prefixes the matrix
// files.
func NewWorkspace(storage Storage, name string) *Workspace {
	return &Workspace{storage: storage, name: name}
}

// Name returns the project name.
func (w *Workspace) Name() string { return w.name }

// Storage returns the backend of the workspace.
func (w *Workspace) Storage() Storage { return w.storage }

// Create makes the project directory structure.
func (w *Workspace) Create() error {
	if err := w.storage.MkdirAll(""); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	for _, dir := range projectDirs {
		if err := w.storage.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return nil
}

// DepthMatrixPath is the mean depth matrix, relative to the project.
func (w *Workspace) DepthMatrixPath() string { return w.name + ".all_cov.tab" }

// BreadthMatrixPath is the 1x breadth matrix, relative to the project.
func (w *Workspace) BreadthMatrixPath() string { return w.name + ".all_perc.tab" }

// WriteMatrices writes the depth and breadth matrices. Both are rendered
// before either is stored, so an inconsistent sample set writes nothing.
func (w *Workspace) WriteMatrices(ctx context.Context, samples []*coverage.SampleSet) error {
	outputs := []struct {
		kind coverage.MatrixKind
		path string
	}{
		{coverage.DepthMatrix, w.DepthMatrixPath()},
		{coverage.BreadthMatrix, w.BreadthMatrixPath()},
	}

	rendered := make([][]byte, len(outputs))
	for i, out := range outputs {
		var buf bytes.Buffer
		if err := coverage.WriteMatrix(&buf, out.kind, samples); err != nil {
			return fmt.Errorf("failed to build %s matrix: %w", out.kind, err)
		}
		rendered[i] = buf.Bytes()
	}

	for i, out := range outputs {
		if err := w.storage.WriteFile(ctx, out.path, rendered[i]); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.path, err)
		}
		log.Printf("%s matrix: %s/%s", out.kind, w.storage.GetBasePath(), out.path)
	}
	return nil
}

// WriteBedHeader writes one "name\t1\tlength" line per reference.
func (w *Workspace) WriteBedHeader(ctx context.Context, refs []coverage.Reference) error {
	var buf bytes.Buffer
	tw := tsv.NewWriter(&buf)
	for _, ref := range refs {
		tw.WriteString(ref.Name)
		tw.WriteString("1")
		tw.WriteString(strconv.Itoa(ref.Length))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return w.storage.WriteFile(ctx, bedHeaderFile, buf.Bytes())
}

// WriteSampleList writes the alignment file paths handed to variant
// calling, one per line.
func (w *Workspace) WriteSampleList(ctx context.Context, paths []string) error {
	var sb strings.Builder
	for _, p := range paths {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return w.storage.WriteFile(ctx, sampleListFile, []byte(sb.String()))
}

// coveragePath is the cache file of a sample.
func coveragePath(sample string) string {
	return path.Join(covDir, sample+coverage.CacheExt)
}

// SaveCoverage caches the coverage of a sample under cov/.
func (w *Workspace) SaveCoverage(ctx context.Context, s *coverage.SampleSet) error {
	var buf bytes.Buffer
	if err := coverage.WriteCache(&buf, s); err != nil {
		return err
	}
	if err := w.storage.WriteFile(ctx, coveragePath(s.Name()), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to cache coverage of %s: %w", s.Name(), err)
	}
	return nil
}

// LoadCoverage reads every cached sample under cov/, sorted by name.
func (w *Workspace) LoadCoverage(ctx context.Context) ([]*coverage.SampleSet, error) {
	files, err := w.storage.List(ctx, covDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached coverage: %w", err)
	}

	var samples []*coverage.SampleSet
	for _, f := range files {
		if !strings.HasSuffix(f, coverage.CacheExt) {
			continue
		}
		data, err := w.storage.ReadFile(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		s, err := coverage.ReadCache(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no cached coverage in %s/%s", ErrNoSamples, w.storage.GetBasePath(), covDir)
	}

	sortSamples(samples)
	return samples, nil
}
