package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"up":                DirectionUp,
		" Down ":            DirectionDown,
		"aFRR-opregulering": DirectionUp,
		"nedregulering":     DirectionDown,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"flat":   CategoryFlat,
		"C":      CategoryFlat,
		"tiered": CategoryTiered,
		"B-lav":  CategoryTiered,
		"A-høj":  CategoryTiered,
		"a-hoej": CategoryTiered,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCategory("D")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
