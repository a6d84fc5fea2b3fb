package coverage

import "sort"

// mean returns the arithmetic mean of values.
func mean(values []int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoPositions
	}
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	return float64(sum) / float64(len(values)), nil
}

// median returns the middle value of values, or the mean of the two middle
// values when the count is even. values is not modified.
func median(values []int) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, ErrNoPositions
	}
	sorted := make([]int, n)
	copy(sorted, values)
	sort.Ints(sorted)

	if n%2 == 0 {
		return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2, nil
	}
	return float64(sorted[n/2]), nil
}
