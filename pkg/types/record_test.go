package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatusFor(t *testing.T) {
	assert.Equal(t, StatusAvailable, LoanStatusFor(""))
	assert.Equal(t, StatusAvailable, LoanStatusFor("   "))
	assert.Equal(t, "loaned to Sam", LoanStatusFor(" Sam "))
}

func TestRecordNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Record
		wantStatus string
		wantLoaned string
	}{
		{
			name:       "empty borrower is available regardless of status text",
			in:         Record{LoanStatus: "Prestado a Ana"},
			wantStatus: StatusAvailable,
		},
		{
			name:       "borrower without status derives it",
			in:         Record{LoanedTo: "Ana"},
			wantStatus: "loaned to Ana",
			wantLoaned: "Ana",
		},
		{
			name:       "borrower with available status derives it",
			in:         Record{LoanedTo: "Ana", LoanStatus: StatusAvailable},
			wantStatus: "loaned to Ana",
			wantLoaned: "Ana",
		},
		{
			name:       "free-text status is kept while loaned",
			in:         Record{LoanedTo: "Ana", LoanStatus: "Prestado a Ana"},
			wantStatus: "Prestado a Ana",
			wantLoaned: "Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.in
			r.Normalize()
			assert.Equal(t, tt.wantStatus, r.LoanStatus)
			assert.Equal(t, tt.wantLoaned, r.LoanedTo)
			assert.Equal(t, tt.wantLoaned == "", r.Available())
		})
	}
}

func TestRecordPatchApply(t *testing.T) {
	base := Record{ID: "1", Title: "Dune", Box: "3", LoanStatus: StatusAvailable}

	t.Run("loan patch sets borrower and status", func(t *testing.T) {
		r := base
		LoanPatch("Sam").Apply(&r)
		assert.Equal(t, "Sam", r.LoanedTo)
		assert.Equal(t, "loaned to Sam", r.LoanStatus)
		assert.Equal(t, "Dune", r.Title)
	})

	t.Run("available status clears the borrower", func(t *testing.T) {
		r := base
		LoanPatch("Sam").Apply(&r)
		RecordPatch{LoanStatus: Ptr(StatusAvailable)}.Apply(&r)
		assert.True(t, r.Available())
		assert.Equal(t, StatusAvailable, r.LoanStatus)
	})

	t.Run("return patch", func(t *testing.T) {
		r := base
		LoanPatch("Sam").Apply(&r)
		ReturnPatch().Apply(&r)
		assert.Equal(t, "", r.LoanedTo)
		assert.Equal(t, StatusAvailable, r.LoanStatus)
	})

	t.Run("nil fields are untouched", func(t *testing.T) {
		r := base
		RecordPatch{Box: Ptr("7")}.Apply(&r)
		assert.Equal(t, "7", r.Box)
		assert.Equal(t, "Dune", r.Title)
		assert.Equal(t, StatusAvailable, r.LoanStatus)
	})

	t.Run("patch from authoritative record", func(t *testing.T) {
		auth := Record{ID: "1", Title: "Dune (1965)", Category: "SF", Box: "4", LoanedTo: "Ana", LoanStatus: "loaned to Ana", Author: "Herbert"}
		r := base
		PatchFrom(auth).Apply(&r)
		assert.Equal(t, auth.Lightweight(), r)
	})
}

func TestRecordPatchEmpty(t *testing.T) {
	assert.True(t, RecordPatch{}.Empty())
	assert.False(t, RecordPatch{Notes: Ptr("")}.Empty())
}

func TestLightweightDropsExtendedFields(t *testing.T) {
	r := Record{ID: "1", Title: "Dune", Author: "Herbert", ISBN: "123", Summary: "spice"}
	lw := r.Lightweight()
	assert.Equal(t, "Dune", lw.Title)
	assert.Empty(t, lw.Author)
	assert.Empty(t, lw.ISBN)
	assert.Empty(t, lw.Summary)
}
