package catalog

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Sorter orders records and option values with locale-aware collation.
// The zero value collates with the root locale.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter for a BCP 47 locale such as "es". An
// unparseable locale falls back to the root locale.
func NewSorter(locale string) Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return Sorter{tag: tag}
}

// Sort returns a new slice ordered by state. Records with equal keys keep
// their input order in both directions.
func (s Sorter) Sort(items []types.Record, state types.SortState) []types.Record {
	out := cloneSlice(items)
	col := s.collator()
	slices.SortStableFunc(out, func(a, b types.Record) int {
		var c int
		switch state.Column {
		case types.ColumnBox:
			c = compareBox(col, a.Box, b.Box)
		case types.ColumnCategory:
			c = col.CompareString(a.Category, b.Category)
		case types.ColumnStatus:
			c = col.CompareString(a.LoanStatus, b.LoanStatus)
		default:
			c = col.CompareString(a.Title, b.Title)
		}
		if state.Direction == types.Descending {
			return -c
		}
		return c
	})
	return out
}

// Strings sorts option values in place: numeric-aware when numeric is set,
// collated otherwise.
func (s Sorter) Strings(values []string, numeric bool) {
	col := s.collator()
	slices.SortStableFunc(values, func(a, b string) int {
		if numeric {
			return compareBox(col, a, b)
		}
		return col.CompareString(a, b)
	})
}

// collator builds a fresh collator; collate.Collator is not safe for
// concurrent use.
func (s Sorter) collator() *collate.Collator {
	return collate.New(s.tag, collate.IgnoreCase)
}

// compareBox compares numerically when both sides parse as integers and
// falls back to collation otherwise.
func compareBox(col *collate.Collator, a, b string) int {
	ai, errA := strconv.Atoi(strings.TrimSpace(a))
	bi, errB := strconv.Atoi(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return col.CompareString(a, b)
}

// Sort orders items with the root locale.
func Sort(items []types.Record, state types.SortState) []types.Record {
	return Sorter{}.Sort(items, state)
}
