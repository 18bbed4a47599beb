package match

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Algorithm names.
const (
	AlgorithmFuzzy       = "fuzzy"
	AlgorithmSubstring   = "substring"
	AlgorithmLevenshtein = "levenshtein"
)

// ErrUnknownAlgorithm is returned by [ByName] for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown matching algorithm")

// AllAlgorithms lists the names accepted by [ByName].
var AllAlgorithms = []string{AlgorithmFuzzy, AlgorithmSubstring, AlgorithmLevenshtein}

// Algorithm scores how well query matches target.
type Algorithm interface {
	// Score returns a similarity in [0, 1].
	Score(query, target string) float64
	// Name returns the algorithm name.
	Name() string
}

// ByName returns the [Algorithm] with the given name.
//
//nolint:ireturn // Selected by configuration.
func ByName(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AlgorithmFuzzy:
		return Fuzzy{}, nil
	case AlgorithmSubstring:
		return Substring{}, nil
	case AlgorithmLevenshtein:
		return Levenshtein{}, nil
	}

	return nil, fmt.Errorf("%w: %q, must be one of %v", ErrUnknownAlgorithm, name, AllAlgorithms)
}

// Levenshtein scores by unit-cost edit distance, normalized by the length of
// the longer string.
type Levenshtein struct{}

func (Levenshtein) Name() string { return AlgorithmLevenshtein }

func (Levenshtein) Score(query, target string) float64 {
	q, t := fold(query), fold(target)
	if score, ok := trivialScore(q, t); ok {
		return score
	}

	longest := max(len(q), len(t))

	return float64(longest-editDistance(q, t)) / float64(longest)
}

// Substring scores contiguous containment, favoring matches near the start
// of the target that cover more of it. Targets that do not contain the query
// fall back to a discounted in-order character sequence score.
type Substring struct{}

func (Substring) Name() string { return AlgorithmSubstring }

func (Substring) Score(query, target string) float64 {
	q, t := fold(query), fold(target)
	if score, ok := trivialScore(q, t); ok {
		return score
	}

	return substringScore(q, t)
}

// Fuzzy scores subsequence matches, allowing skipped characters in the
// target. Matches at word boundaries, near the start, and in consecutive runs
// score higher. Query characters missing from the target are penalized.
type Fuzzy struct{}

func (Fuzzy) Name() string { return AlgorithmFuzzy }

func (Fuzzy) Score(query, target string) float64 {
	q, t := fold(query), fold(target)
	if score, ok := trivialScore(q, t); ok {
		return score
	}

	if indexRunes(t, q) >= 0 {
		return substringScore(q, t)
	}

	lq, lt := float64(len(q)), float64(len(t))

	var (
		score       float64
		consecutive float64
		next        int
		last        = -1
	)

	for qi, qc := range q {
		idx := indexRune(t, qc, next)
		if idx < 0 {
			score -= 1.0 + float64(qi)/lq

			continue
		}

		charScore := 1.0
		if idx == 0 || !isAlnum(t[idx-1]) {
			charScore += 0.3
		}

		charScore += 0.1 * (1 - float64(idx)/lt)

		if last >= 0 && idx == last+1 {
			consecutive += 0.2
		} else {
			consecutive = 0
		}

		charScore += consecutive
		score += charScore

		last = idx
		next = idx + 1
	}

	score /= lq
	if len(q) > len(t) {
		score *= 0.5
	}

	score = clamp(score)
	if len(q) <= 2 {
		score *= 0.8
	}

	return score
}

func substringScore(q, t []rune) float64 {
	pos := indexRunes(t, q)
	if pos < 0 {
		return sequenceScore(q, t) * 0.7
	}

	lt := float64(len(t))

	return min(1.0, 0.6*(1-float64(pos)/lt)+0.4*(float64(len(q))/lt))
}

// sequenceScore returns the fraction of q's characters found in t in order,
// scanning greedily from left to right.
func sequenceScore(q, t []rune) float64 {
	var found, next int
	for _, qc := range q {
		idx := indexRune(t, qc, next)
		if idx < 0 {
			continue
		}

		found++
		next = idx + 1
	}

	return float64(found) / float64(len(q))
}

func trivialScore(q, t []rune) (float64, bool) {
	switch {
	case len(q) == 0 && len(t) == 0:
		return 1.0, true
	case len(q) == 0 || len(t) == 0:
		return 0.0, true
	case slices.Equal(q, t):
		return 1.0, true
	}

	return 0, false
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
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

// fold normalizes s to NFC and lowercases it.
func fold(s string) []rune {
	return []rune(strings.ToLower(norm.NFC.String(s)))
}

// containsFold reports whether value contains query, ignoring case.
func containsFold(value, query string) bool {
	return indexRunes(fold(value), fold(query)) >= 0
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}

	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}

	return -1
}

func indexRune(s []rune, r rune, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}

	return -1
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func clamp(f float64) float64 {
	return max(0, min(1, f))
}
