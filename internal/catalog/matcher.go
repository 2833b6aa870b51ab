package catalog

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is one ranked hit: the index of the title in the input and its
// distance from the query (0 is an exact hit).
type Match struct {
	Index int
	Score float64
}

// Matcher ranks titles against a query. Both the query and the titles are
// already folded by the caller. Rank returns the matching titles in
// relevance order and never mutates titles.
type Matcher interface {
	Rank(query string, titles []string) []Match
}

// LiteralMatcher keeps titles containing the query, in input order.
type LiteralMatcher struct{}

// Rank implements Matcher.
func (LiteralMatcher) Rank(query string, titles []string) []Match {
	matches := make([]Match, 0)
	for i, t := range titles {
		if strings.Contains(t, query) {
			matches = append(matches, Match{Index: i})
		}
	}
	return matches
}

// FuzzyMatcher tolerates misspellings. The score of a title is the smallest
// edit distance between the query and any window of the title of about the
// query's length, divided by the query length. Titles scoring above
// Threshold are dropped.
type FuzzyMatcher struct {
	// Threshold is within [0, 1]: 0 accepts substring hits only, 1 accepts
	// anything.
	Threshold float64
}

// NewFuzzyMatcher returns a FuzzyMatcher with the given threshold.
func NewFuzzyMatcher(threshold float64) FuzzyMatcher {
	return FuzzyMatcher{Threshold: threshold}
}

// Rank implements Matcher. Ties are broken by shorter title, then by input
// order.
func (m FuzzyMatcher) Rank(query string, titles []string) []Match {
	matches := make([]Match, 0)
	q := []rune(query)
	if len(q) == 0 {
		return matches
	}
	for i, t := range titles {
		score := float64(m.distance(q, t)) / float64(len(q))
		if score <= m.Threshold {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return len([]rune(titles[a.Index])) - len([]rune(titles[b.Index]))
	})
	return matches
}

func (m FuzzyMatcher) distance(q []rune, title string) int {
	if strings.Contains(title, string(q)) {
		return 0
	}
	t := []rune(title)
	query := string(q)
	best := fuzzy.LevenshteinDistance(query, title)
	for w := len(q) - 1; w <= len(q)+1; w++ {
		if w < 1 || w > len(t) {
			continue
		}
		for i := 0; i+w <= len(t); i++ {
			if d := fuzzy.LevenshteinDistance(query, string(t[i:i+w])); d < best {
				best = d
			}
		}
	}
	return best
}
