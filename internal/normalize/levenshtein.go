package normalize

import "strings"

// Distance computes the Levenshtein edit distance between two strings,
// counted in runes. Classic two-row dynamic programming.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Ratio returns a similarity score in [0, 1] between two names, where 1 means
// identical. Comparison is case-insensitive: both names are lowercased before
// the edit distance is taken. Two empty strings are identical (ratio 1).
func Ratio(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if la == lb {
		return 1
	}
	maxLen := len([]rune(la))
	if n := len([]rune(lb)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Distance(la, lb))/float64(maxLen)
}
