package metasnv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/scttfrdmn/metasnv-go/internal/bamtest"
	"github.com/scttfrdmn/metasnv-go/pkg/metasnv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	refA = bamtest.Ref{Name: "A", Length: 10}
	refB = bamtest.Ref{Name: "B", Length: 5}
)

// writeCohort writes s1..s3 with A covered 2, 4 and 6 times and B once.
func writeCohort(t *testing.T, dir string) {
	refs := []bamtest.Ref{refA, refB}
	for name, n := range map[string]int{"s1": 2, "s2": 4, "s3": 6} {
		reads := append(bamtest.Uniform(refA, n), bamtest.Uniform(refB, 1)...)
		bamtest.Write(t, filepath.Join(dir, name+".bam"), refs, reads)
	}
	// Not an alignment file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
}

func runProject(t *testing.T, root, input string, threads int, reuse bool) string {
	project := filepath.Join(root, "cohort")
	cfg := metasnv.NewConfig()
	cfg.ProjectDir = project
	cfg.InputDir = input
	cfg.Threads = threads
	cfg.UsePrevCov = reuse
	cfg.ShowProgress = false
	require.NoError(t, metasnv.Run(context.Background(), cfg))
	return project
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "pipeline")
	defer cleanup()
	input := filepath.Join(dir, "bams")
	require.NoError(t, os.MkdirAll(input, 0755))
	writeCohort(t, input)

	project := runProject(t, filepath.Join(dir, "one"), input, 1, false)

	assert.Equal(t,
		"\ts1\ts2\ts3\n"+
			"TaxId\tAverage_cov\tAverage_cov\tAverage_cov\n"+
			"A\t2.0\t4.0\t6.0\n"+
			"B\t1.0\t1.0\t1.0\n",
		readFile(t, filepath.Join(project, "cohort.all_cov.tab")))
	assert.Equal(t,
		"\ts1\ts2\ts3\n"+
			"TaxId\tPercentage_1x\tPercentage_1x\tPercentage_1x\n"+
			"A\t1.0\t1.0\t1.0\n"+
			"B\t1.0\t1.0\t1.0\n",
		readFile(t, filepath.Join(project, "cohort.all_perc.tab")))
	assert.Equal(t, "A\t1\t10\nB\t1\t5\n", readFile(t, filepath.Join(project, "bed_header")))
	assert.Equal(t,
		filepath.Join(input, "s1.bam")+"\n"+filepath.Join(input, "s2.bam")+"\n"+filepath.Join(input, "s3.bam")+"\n",
		readFile(t, filepath.Join(project, "all_samples")))

	for _, s := range []string{"s1", "s2", "s3"} {
		_, err := os.Stat(filepath.Join(project, "cov", s+".cov.zst"))
		assert.NoError(t, err, s)
	}
}

func TestRunWorkerCountInvariant(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "pipeline")
	defer cleanup()
	input := filepath.Join(dir, "bams")
	require.NoError(t, os.MkdirAll(input, 0755))
	writeCohort(t, input)

	serial := runProject(t, filepath.Join(dir, "serial"), input, 1, false)
	parallel := runProject(t, filepath.Join(dir, "parallel"), input, 3, false)

	for _, name := range []string{"cohort.all_cov.tab", "cohort.all_perc.tab", "bed_header"} {
		assert.Equal(t, readFile(t, filepath.Join(serial, name)), readFile(t, filepath.Join(parallel, name)), name)
	}
}

func TestRunUsePrevCov(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "pipeline")
	defer cleanup()
	input := filepath.Join(dir, "bams")
	require.NoError(t, os.MkdirAll(input, 0755))
	writeCohort(t, input)

	project := runProject(t, dir, input, 2, false)
	depth := readFile(t, filepath.Join(project, "cohort.all_cov.tab"))
	breadth := readFile(t, filepath.Join(project, "cohort.all_perc.tab"))

	// The cache alone must reproduce the matrices
	require.NoError(t, os.RemoveAll(input))
	require.NoError(t, os.Remove(filepath.Join(project, "cohort.all_cov.tab")))

	runProject(t, dir, "", 2, true)
	assert.Equal(t, depth, readFile(t, filepath.Join(project, "cohort.all_cov.tab")))
	assert.Equal(t, breadth, readFile(t, filepath.Join(project, "cohort.all_perc.tab")))
}

func TestRunNoBAMs(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "pipeline")
	defer cleanup()
	input := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(input, 0755))

	cfg := metasnv.NewConfig()
	cfg.ProjectDir = filepath.Join(dir, "cohort")
	cfg.InputDir = input
	err := metasnv.Run(context.Background(), cfg)
	assert.True(t, errors.Is(err, metasnv.ErrNoSamples))
}

func TestRunInconsistentReferences(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "pipeline")
	defer cleanup()
	input := filepath.Join(dir, "bams")
	require.NoError(t, os.MkdirAll(input, 0755))

	bamtest.Write(t, filepath.Join(input, "s1.bam"), []bamtest.Ref{refA, refB}, bamtest.Uniform(refA, 1))
	bamtest.Write(t, filepath.Join(input, "s2.bam"), []bamtest.Ref{refA}, bamtest.Uniform(refA, 1))

	cfg := metasnv.NewConfig()
	cfg.ProjectDir = filepath.Join(dir, "cohort")
	cfg.InputDir = input
	cfg.ShowProgress = false
	err := metasnv.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s2")
	assert.Contains(t, err.Error(), "same reference database")

	_, statErr := os.Stat(filepath.Join(cfg.ProjectDir, "cohort.all_cov.tab"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFindBAMs(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "input")
	defer cleanup()
	writeCohort(t, dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bam"), 0755))

	paths, err := metasnv.FindBAMs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "s1.bam"),
		filepath.Join(dir, "s2.bam"),
		filepath.Join(dir, "s3.bam"),
	}, paths)

	_, err = metasnv.FindBAMs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
