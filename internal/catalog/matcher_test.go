package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dune", "dune"},
		{"Cien Años  de Soledad", "cien anos de soledad"},
		{"  El Túnel ", "el tunel"},
		{"ÉLAN", "elan"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestFuzzyMatcher_Rank(t *testing.T) {
	titles := []string{"neuromancer", "dune messiah", "dune", "cien anos de soledad"}
	m := NewFuzzyMatcher(0.4)

	t.Run("substring hits rank shorter titles first", func(t *testing.T) {
		got := m.Rank("dun", titles)
		if assert.Len(t, got, 2) {
			assert.Equal(t, 2, got[0].Index)
			assert.Equal(t, 1, got[1].Index)
			assert.Zero(t, got[0].Score)
		}
	})

	t.Run("tolerates a misspelling", func(t *testing.T) {
		got := m.Rank("mesiah", titles)
		if assert.Len(t, got, 1) {
			assert.Equal(t, 1, got[0].Index)
			assert.Greater(t, got[0].Score, 0.0)
		}
	})

	t.Run("excludes unrelated titles", func(t *testing.T) {
		assert.Empty(t, m.Rank("xylophone", titles))
	})

	t.Run("zero threshold is substring only", func(t *testing.T) {
		strict := NewFuzzyMatcher(0)
		assert.Empty(t, strict.Rank("mesiah", titles))
		assert.Len(t, strict.Rank("messiah", titles), 1)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.NotNil(t, m.Rank("dune", nil))
		assert.Empty(t, m.Rank("", titles))
	})
}

func TestLiteralMatcher_Rank(t *testing.T) {
	titles := []string{"dune messiah", "neuromancer", "dune"}
	got := LiteralMatcher{}.Rank("dune", titles)
	assert.Equal(t, []Match{{Index: 0}, {Index: 2}}, got)
	assert.Empty(t, LiteralMatcher{}.Rank("dnue", titles))
}
