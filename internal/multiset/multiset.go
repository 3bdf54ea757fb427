// Package multiset implements the frequency-map arithmetic every matching
// and ranking computation is built on. A draw pool is the multiset union of
// all draws in the cycle; a ticket matches the pool value-by-value, capped
// at the smaller occurrence count on either side.
package multiset

// Frequency returns a value → occurrence count map for the given sequence.
// An empty or nil sequence yields an empty map.
func Frequency(values []int64) map[int64]int {
	freq := make(map[int64]int, len(values))
	for _, v := range values {
		freq[v]++
	}
	return freq
}

// Accumulate folds values into an existing frequency map.
func Accumulate(dst map[int64]int, values []int64) {
	for _, v := range values {
		dst[v]++
	}
}

// Matches returns the capped multiset intersection between a ticket's numbers
// and the pool: for every distinct value the smaller of the two occurrence
// counts, summed. A value appearing 3 times on the ticket but twice in the
// pool contributes 2, not 3 and not 1.
func Matches(numbers []int64, pool map[int64]int) int {
	ticket := Frequency(numbers)
	total := 0
	for v, count := range ticket {
		if available := pool[v]; available < count {
			total += available
		} else {
			total += count
		}
	}
	return total
}

// PositionFlags reports, position by position, whether each occurrence in
// numbers is covered by the pool. The pool budget per value is consumed in
// ticket order, so with 2 pool occurrences and 3 ticket occurrences the first
// two positions are flagged and the third is not.
func PositionFlags(numbers []int64, pool map[int64]int) []bool {
	flags := make([]bool, len(numbers))
	remaining := make(map[int64]int, len(pool))
	for v, count := range pool {
		remaining[v] = count
	}
	for i, v := range numbers {
		if remaining[v] > 0 {
			remaining[v]--
			flags[i] = true
		}
	}
	return flags
}
