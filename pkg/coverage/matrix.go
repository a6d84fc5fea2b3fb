package coverage

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
)

// matrixCorner is the label heading the reference column.
const matrixCorner = "TaxId"

// WriteMatrix writes a cross-sample matrix of kind to w. Columns are the
// samples sorted by name, rows the union of their references sorted by name.
//
// Every cell is computed before anything is written, so a sample missing a
// reference leaves w untouched and returns a *ReferenceMismatchError.
func WriteMatrix(w io.Writer, kind MatrixKind, samples []*SampleSet) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedStatistic, kind)
	}

	ordered, err := sortSamples(samples)
	if err != nil {
		return err
	}
	refs := referenceUnion(ordered)

	rows := make([][]float64, len(refs))
	for i, ref := range refs {
		row := make([]float64, len(ordered))
		for j, sample := range ordered {
			track, ok := sample.tracks[ref]
			if !ok {
				return &ReferenceMismatchError{Sample: sample.Name(), Reference: ref}
			}
			v, err := kind.value(track)
			if err != nil {
				return fmt.Errorf("%s matrix, sample %s, reference %s: %w", kind, sample.Name(), ref, err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	tw := tsv.NewWriter(w)

	// Sample names, under an empty corner cell
	tw.WriteString("")
	for _, sample := range ordered {
		tw.WriteString(sample.Name())
	}
	if err := tw.EndLine(); err != nil {
		return err
	}

	tw.WriteString(matrixCorner)
	for range ordered {
		tw.WriteString(kind.Label())
	}
	if err := tw.EndLine(); err != nil {
		return err
	}

	for i, ref := range refs {
		tw.WriteString(ref)
		for _, v := range rows[i] {
			tw.WriteString(FormatValue(v))
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// sortSamples returns samples ordered by name, rejecting duplicate names.
func sortSamples(samples []*SampleSet) ([]*SampleSet, error) {
	ordered := make([]*SampleSet, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name() < ordered[j].Name()
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Name() == ordered[i-1].Name() {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSample, ordered[i].Name())
		}
	}
	return ordered, nil
}

// referenceUnion returns every reference declared by any sample, sorted.
func referenceUnion(samples []*SampleSet) []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, sample := range samples {
		for _, name := range sample.names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			refs = append(refs, name)
		}
	}
	sort.Strings(refs)
	return refs
}

// FormatValue renders a matrix cell as the shortest decimal that round-trips,
// always carrying a decimal point ("2.0", "12.5"). Magnitudes below 1e-4 or
// from 1e16 use exponent form ("1e-05").
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
