package match

import (
	"math"
	"regexp"
	"strings"
)

// Confidence thresholds are fixed policy, not runtime configuration.
// Enrichment fetches full detail only above EnrichThreshold (strictly
// greater); the partition pass accepts records at AcceptThreshold and
// above. Keeping both at 70 gives one coherent policy across passes.
const (
	PoorThreshold     = 50.0
	EnrichThreshold   = 70.0
	AcceptThreshold   = 70.0
	ModerateThreshold = 90.0
)

var bracketedRe = regexp.MustCompile(`\(.*?\)`)

// Score computes a 0-100 similarity between a search query and the title a
// source returned for it. Parenthetical content (usually a year or a
// translated title) is removed from both sides before comparing, then the
// Levenshtein distance is normalized against the longer string.
func Score(query, candidate string) float64 {
	a := strings.TrimSpace(bracketedRe.ReplaceAllString(query, ""))
	b := strings.TrimSpace(bracketedRe.ReplaceAllString(candidate, ""))

	a = strings.ToLower(a)
	b = strings.ToLower(b)

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}

	d := levenshtein([]rune(a), []rune(b))
	score := (1 - float64(d)/float64(maxLen)) * 100
	return math.Round(score*100) / 100
}

// Enrichable reports whether a score is high enough to justify fetching
// full detail from the source.
func Enrichable(score float64) bool {
	return score > EnrichThreshold
}

// Accepted reports whether a score routes a record into the clean partition.
func Accepted(score float64) bool {
	return score >= AcceptThreshold
}

// levenshtein is the classic single-character edit distance with unit cost
// for insert, delete and substitute, computed over two rolling rows.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
