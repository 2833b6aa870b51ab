package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func boxes(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Box
	}
	return out
}

func TestSort_NumericBox(t *testing.T) {
	items := []types.Record{{ID: "x", Box: "10"}, {ID: "y", Box: "2"}, {ID: "z", Box: "1"}}

	asc := Sort(items, types.SortState{Column: types.ColumnBox, Direction: types.Ascending})
	assert.Equal(t, []string{"1", "2", "10"}, boxes(asc))

	desc := Sort(items, types.SortState{Column: types.ColumnBox, Direction: types.Descending})
	assert.Equal(t, []string{"10", "2", "1"}, boxes(desc))

	assert.Equal(t, []string{"10", "2", "1"}, boxes(items), "input order untouched")
}

func TestSort_BoxFallsBackToLexical(t *testing.T) {
	items := []types.Record{{Box: "b"}, {Box: "3"}, {Box: "A"}, {Box: "12"}}
	got := Sort(items, types.SortState{Column: types.ColumnBox, Direction: types.Ascending})
	// Mixed pairs compare lexically; digits collate before letters.
	assert.Equal(t, []string{"3", "12", "A", "b"}, boxes(got))

	trimmed := Sort([]types.Record{{Box: " 10"}, {Box: "9 "}}, types.DefaultSort.Toggle(types.ColumnBox))
	assert.Equal(t, []string{"9 ", " 10"}, boxes(trimmed))
}

func TestSort_StableTies(t *testing.T) {
	items := []types.Record{
		{ID: "1", Title: "Dune"},
		{ID: "2", Title: "Akira"},
		{ID: "3", Title: "dune"},
		{ID: "4", Title: "Dune"},
	}

	asc := Sort(items, types.SortState{Column: types.ColumnTitle, Direction: types.Ascending})
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(asc))

	desc := Sort(items, types.SortState{Column: types.ColumnTitle, Direction: types.Descending})
	assert.Equal(t, []string{"1", "3", "4", "2"}, ids(desc))

	again := Sort(asc, types.SortState{Column: types.ColumnTitle, Direction: types.Ascending})
	assert.Equal(t, ids(asc), ids(again), "re-sorting must not shuffle rows")
}

func TestSorter_Collation(t *testing.T) {
	items := []types.Record{
		{ID: "1", Title: "zorro"},
		{ID: "2", Title: "Ñandú"},
		{ID: "3", Title: "nube"},
		{ID: "4", Title: "Árbol"},
	}
	got := NewSorter("es").Sort(items, types.SortState{Column: types.ColumnTitle, Direction: types.Ascending})
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(got))
}

func TestSort_OtherColumns(t *testing.T) {
	items := []types.Record{
		{ID: "1", Category: "SF", LoanStatus: "loaned to Sam"},
		{ID: "2", Category: "novela", LoanStatus: types.StatusAvailable},
		{ID: "3", Category: "Ensayo", LoanStatus: "loaned to Ana"},
	}
	byCategory := Sort(items, types.SortState{Column: types.ColumnCategory, Direction: types.Ascending})
	assert.Equal(t, []string{"3", "2", "1"}, ids(byCategory))

	byStatus := Sort(items, types.SortState{Column: types.ColumnStatus, Direction: types.Ascending})
	assert.Equal(t, []string{"2", "3", "1"}, ids(byStatus))
}

func TestSorter_Strings(t *testing.T) {
	values := []string{"10", "2", "1"}
	Sorter{}.Strings(values, true)
	assert.Equal(t, []string{"1", "2", "10"}, values)

	values = []string{"b", "C", "a"}
	Sorter{}.Strings(values, false)
	assert.Equal(t, []string{"a", "b", "C"}, values)
}

func TestNewSorter_BadLocale(t *testing.T) {
	s := NewSorter("not a locale!")
	got := s.Sort([]types.Record{{Title: "b"}, {Title: "A"}}, types.DefaultSort)
	assert.Equal(t, "A", got[0].Title)
}
