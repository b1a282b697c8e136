package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []Category {
	return []Category{
		{ID: snowflake.ID(101), Name: "Newborn"},
		{ID: snowflake.ID(102), Name: "Gestante"},
		{ID: snowflake.ID(103), Name: "Família"},
	}
}

func TestResolve_ByID(t *testing.T) {
	got := Resolve(testCategories(), Hints{ID: 102, Name: "Wrong Name", Position: 0})
	require.NotNil(t, got)
	assert.Equal(t, "Gestante", got.Name)
}

func TestResolve_ByNameWhenIDMisses(t *testing.T) {
	got := Resolve(testCategories(), Hints{ID: 999, Name: "newborn", Position: NoPosition})
	require.NotNil(t, got)
	assert.Equal(t, "Newborn", got.Name)
}

func TestResolve_ByPositionWhenNothingElseMatches(t *testing.T) {
	got := Resolve(testCategories(), Hints{Name: "Batizado", Position: 2})
	require.NotNil(t, got)
	assert.Equal(t, "Família", got.Name)
}

func TestResolve_NoMatch(t *testing.T) {
	assert.Nil(t, Resolve(testCategories(), Hints{ID: 999, Name: "Batizado", Position: NoPosition}))
	assert.Nil(t, Resolve(testCategories(), Hints{Position: 7}))
	assert.Nil(t, Resolve(nil, Hints{ID: 101}))
}
