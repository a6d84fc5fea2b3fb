package coverage

import (
	"fmt"
	"strings"
)

// Statistic selects a scalar summary of a track's depth values.
type Statistic int

const (
	Mean Statistic = iota
	Median
)

func (s Statistic) String() string {
	switch s {
	case Mean:
		return "mean"
	case Median:
		return "median"
	default:
		return fmt.Sprintf("Statistic(%d)", int(s))
	}
}

func (s Statistic) valid() bool {
	return s == Mean || s == Median
}

// ParseStatistic parses "mean" or "median". The raw depth sequence is not a
// statistic; use Track.Depths for it.
func ParseStatistic(s string) (Statistic, error) {
	switch strings.ToLower(s) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "raw":
		return 0, fmt.Errorf("%w: %q is not a scalar statistic, use the raw depth sequence", ErrUnsupportedStatistic, s)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedStatistic, s)
	}
}

// BreadthThreshold is the minimum depth counted by a breadth matrix.
const BreadthThreshold = 1

// MatrixKind selects the per-cell value of a cross-sample matrix.
type MatrixKind int

const (
	// DepthMatrix cells hold the mean depth of a reference.
	DepthMatrix MatrixKind = iota
	// BreadthMatrix cells hold the fraction of a reference covered at
	// BreadthThreshold or more.
	BreadthMatrix
)

func (k MatrixKind) String() string {
	switch k {
	case DepthMatrix:
		return "depth"
	case BreadthMatrix:
		return "breadth"
	default:
		return fmt.Sprintf("MatrixKind(%d)", int(k))
	}
}

// Label returns the column label repeated on the second header line.
func (k MatrixKind) Label() string {
	switch k {
	case DepthMatrix:
		return "Average_cov"
	case BreadthMatrix:
		return "Percentage_1x"
	default:
		return ""
	}
}

func (k MatrixKind) valid() bool {
	return k == DepthMatrix || k == BreadthMatrix
}

// value computes the matrix cell for a track.
func (k MatrixKind) value(t *Track) (float64, error) {
	switch k {
	case DepthMatrix:
		return t.Depth(Mean)
	case BreadthMatrix:
		return t.Breadth(BreadthThreshold), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedStatistic, k)
	}
}

// ParseMatrixKind parses "depth" or "breadth".
func ParseMatrixKind(s string) (MatrixKind, error) {
	switch strings.ToLower(s) {
	case "depth":
		return DepthMatrix, nil
	case "breadth":
		return BreadthMatrix, nil
	default:
		return 0, fmt.Errorf("%w: matrix kind %q", ErrUnsupportedStatistic, s)
	}
}
