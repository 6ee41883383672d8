package accuracy

import "golang.org/x/exp/constraints"

// mean returns the arithmetic mean of vs. Callers guarantee vs is non-empty.
func mean[T constraints.Float](vs []T) T {
	var sum T
	for _, v := range vs {
		sum += v
	}
	return sum / T(len(vs))
}

// abs returns the absolute value of v.
func abs[T constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
