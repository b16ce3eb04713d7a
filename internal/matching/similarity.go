package matching

import "strings"

// Similarity scores two titles in [0,1] after normalizing both. The score is
// the larger of the token-set Sørensen–Dice coefficient and the Levenshtein
// ratio of the normalized strings. It is symmetric and returns 1.0 when the
// normalized forms are identical.
func Similarity(a, b string) float64 {
	return similarity(Normalize(a), Normalize(b))
}

// similarity expects normalized input.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return max(diceCoefficient(strings.Fields(a), strings.Fields(b)), levenshteinRatio(a, b))
}

func diceCoefficient(tokens1, tokens2 []string) float64 {
	set1 := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = true
	}
	set2 := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = true
	}

	if len(set1)+len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range set1 {
		if set2[t] {
			intersection++
		}
	}
	return 2 * float64(intersection) / float64(len(set1)+len(set2))
}

func levenshteinRatio(s1, s2 string) float64 {
	maxLen := max(len(s1), len(s2))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(s1, s2))/float64(maxLen)
}

// levenshteinDistance works on bytes; normalized strings are ASCII.
func levenshteinDistance(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
