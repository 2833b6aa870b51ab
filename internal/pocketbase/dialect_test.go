package pocketbase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestDialect_Record(t *testing.T) {
	loan := dialects[types.DialectLoanField]
	status := dialects[types.DialectStatusField]

	tests := []struct {
		name       string
		d          dialect
		item       map[string]any
		wantStatus string
		wantLoaned string
	}{
		{"loan field empty", loan, map[string]any{"id": "1", "prestado": ""}, types.StatusAvailable, ""},
		{"loan field set", loan, map[string]any{"id": "1", "prestado": " Ana "}, "loaned to Ana", "Ana"},
		{"status field available", status, map[string]any{"id": "1", "estado": "disponible"}, types.StatusAvailable, ""},
		{"status field free text", status, map[string]any{"id": "1", "estado": "Prestado a Ana", "prestadoa": "Ana"}, "Prestado a Ana", "Ana"},
		{"status text without borrower", status, map[string]any{"id": "1", "estado": "Prestado a Ana"}, types.StatusAvailable, ""},
		{"borrower with disponible text", status, map[string]any{"id": "1", "estado": "Disponible", "prestadoa": "Ana"}, "loaned to Ana", "Ana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.d.record(tt.item)
			assert.Equal(t, tt.wantStatus, r.LoanStatus)
			assert.Equal(t, tt.wantLoaned, r.LoanedTo)
		})
	}
}

func TestDialect_StatusFilter(t *testing.T) {
	loan := dialects[types.DialectLoanField]
	status := dialects[types.DialectStatusField]

	assert.Equal(t, `prestado = "Sam"`, loan.filter(types.Filters{Status: "loaned to Sam"}))
	assert.Equal(t, `estado = "Prestado a Sam"`, status.filter(types.Filters{Status: "Prestado a Sam"}))
	assert.Equal(t, `prestadoa = ""`, status.filter(types.Filters{Status: types.StatusAvailable}))
	assert.Equal(t, `caja = "3"`, loan.filter(types.Filters{Box: "3"}))
	assert.Empty(t, loan.filter(types.Filters{}))
}

func TestStr(t *testing.T) {
	assert.Equal(t, "3", str(float64(3)))
	assert.Equal(t, "2.5", str(2.5))
	assert.Equal(t, "", str(nil))
	assert.Equal(t, "x", str(" x "))
	assert.Equal(t, "true", str(true))
}
