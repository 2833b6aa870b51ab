package types

import "strings"

// Filter dimensions with a dropdown of options.
const (
	DimensionCategory = "category"
	DimensionBox      = "box"
	DimensionStatus   = "status"
)

// FilterState is the user's current search. An empty string means no
// constraint on that dimension.
type FilterState struct {
	Query         string `json:"query"`
	Category      string `json:"category"`
	Box           string `json:"box"`
	Status        string `json:"status"`
	FavoritesOnly bool   `json:"favorites_only"`
}

// Active reports whether any constraint is set.
func (f FilterState) Active() bool {
	return f.Query != "" || f.Category != "" || f.Box != "" || f.Status != "" || f.FavoritesOnly
}

// Without returns a copy with the given dimension cleared.
func (f FilterState) Without(dimension string) FilterState {
	switch dimension {
	case DimensionCategory:
		f.Category = ""
	case DimensionBox:
		f.Box = ""
	case DimensionStatus:
		f.Status = ""
	}
	return f
}

// Describe renders the active constraints for a results header, e.g.
// `search: "dune" | category: Fiction`. Empty when nothing is active.
func (f FilterState) Describe() string {
	var parts []string
	if f.Query != "" {
		parts = append(parts, `search: "`+f.Query+`"`)
	}
	if f.Category != "" {
		parts = append(parts, "category: "+f.Category)
	}
	if f.Box != "" {
		parts = append(parts, "box: "+f.Box)
	}
	if f.Status != "" {
		parts = append(parts, "status: "+f.Status)
	}
	if f.FavoritesOnly {
		parts = append(parts, "favorites only")
	}
	return strings.Join(parts, " | ")
}

// Filters is the server-side query accepted by FilteredQuerier.
type Filters struct {
	Category string
	Box      string
	Status   string
	Text     string
}

// Filters converts the exact-match part of the state plus the query text.
func (f FilterState) Filters() Filters {
	return Filters{Category: f.Category, Box: f.Box, Status: f.Status, Text: f.Query}
}

// Options lists the selectable values of each filter dimension.
type Options struct {
	Categories []string `json:"categories"`
	Boxes      []string `json:"boxes"`
	Statuses   []string `json:"statuses"`
}

// Stats summarizes a list of records.
type Stats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Loaned    int `json:"loaned"`
}

// StatsOf counts records by loan state.
func StatsOf(records []Record) Stats {
	s := Stats{Total: len(records)}
	for _, r := range records {
		if r.Available() {
			s.Available++
		} else {
			s.Loaned++
		}
	}
	return s
}
