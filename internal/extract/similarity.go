package extract

import "github.com/agnivade/levenshtein"

// similarity normalizes edit distance into [0, 1]: 1 means identical,
// 0 means nothing in common at the longer string's length.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longer)
}
