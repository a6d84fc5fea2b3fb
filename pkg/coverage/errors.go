package coverage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedStatistic is returned for a statistic or matrix kind
	// outside the supported set.
	ErrUnsupportedStatistic = errors.New("unsupported statistic")

	// ErrNoPositions is returned when a mean or median is requested from a
	// track that has no recorded positions.
	ErrNoPositions = errors.New("no positions recorded")

	// ErrReferenceNotFound is returned when a reference name is not declared
	// by a sample.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrInvalidReference is returned for a reference declaration that
	// cannot back a track (empty name, non-positive length, duplicate).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInconsistentReferences is returned when samples do not declare the
	// same set of references.
	ErrInconsistentReferences = errors.New("inconsistent references across samples")

	// ErrDuplicateSample is returned when two samples share a name.
	ErrDuplicateSample = errors.New("duplicate sample name")
)

// ReferenceMismatchError identifies the sample that lacks a reference
// required by a cross-sample matrix.
type ReferenceMismatchError struct {
	Sample    string
	Reference string
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("reference %q not found in sample %q: are all BAM files aligned to the same reference database?",
		e.Reference, e.Sample)
}

func (e *ReferenceMismatchError) Unwrap() error {
	return ErrInconsistentReferences
}
