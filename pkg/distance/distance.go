package distance

import (
	agnivade "github.com/agnivade/levenshtein"
)

// Func computes the edit distance between two strings. Implementations
// must be symmetric, return zero iff a == b, and satisfy the triangle
// inequality, which the BK-tree relies on for pruning.
type Func func(a, b string) int

// Default is the distance function used when none is configured. The
// optimized implementation and Levenshtein below agree on every input;
// the latter exists as a dependency-free reference.
var Default Func = agnivade.ComputeDistance

// Levenshtein returns the edit distance between a and b using the
// classic dynamic-programming recurrence (unit-cost insert, delete,
// substitute) over runes. Only two rolling rows are kept, so memory is
// O(len(b)) rather than a full matrix.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 0; i < len(ra); i++ {
		curr[0] = i + 1
		for j := 0; j < len(rb); j++ {
			cost := 1
			if ra[i] == rb[j] {
				cost = 0
			}

			del := prev[j+1] + 1
			ins := curr[j] + 1
			sub := prev[j] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j+1] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
