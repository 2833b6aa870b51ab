package types

import "fmt"

// Column is a sortable column of the results table.
type Column string

// Sortable columns.
const (
	ColumnTitle    Column = "title"
	ColumnCategory Column = "category"
	ColumnBox      Column = "box"
	ColumnStatus   Column = "status"
)

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active column and direction.
type SortState struct {
	Column    Column    `json:"column"`
	Direction Direction `json:"direction"`
}

// DefaultSort is the initial sort: title ascending.
var DefaultSort = SortState{Column: ColumnTitle, Direction: Ascending}

// Toggle applies a header click. Clicking the active column flips the
// direction; any other column starts ascending.
func (s SortState) Toggle(c Column) SortState {
	if s.Column == c {
		if s.Direction == Ascending {
			return SortState{Column: c, Direction: Descending}
		}
		return SortState{Column: c, Direction: Ascending}
	}
	return SortState{Column: c, Direction: Ascending}
}

// ParseColumn validates a column name.
func ParseColumn(name string) (Column, error) {
	switch c := Column(name); c {
	case ColumnTitle, ColumnCategory, ColumnBox, ColumnStatus:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown sort column %q", ErrValidation, name)
	}
}
