package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortExpressionFor(t *testing.T) {
	e := testPlayers(t)

	se, err := e.SortExpressionFor("handle")
	require.NoError(t, err)
	assert.Equal(t, `"_e"."handle"`, se.SQL)
	assert.Nil(t, se.Join)
	assert.False(t, se.Aggregate)

	se, err = e.SortExpressionFor("followers")
	require.NoError(t, err)
	assert.Equal(t, `COUNT(DISTINCT "_followers"."follower_id")`, se.SQL)
	require.NotNil(t, se.Join)
	assert.Equal(t, "_followers", se.Join.Alias)
	assert.True(t, se.Aggregate)

	assert.Equal(t, []string{"followers", "handle", "id"}, e.SortKeys())
}

func TestSortExpressionForUnknownKey(t *testing.T) {
	e := testPlayers(t)

	_, err := e.SortExpressionFor("rating")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSortKey)
	assert.True(t, IsInvalidParam(err))
	assert.Contains(t, err.Error(), "rating")
}

func TestParseSortDirection(t *testing.T) {
	for in, want := range map[string]SortDirection{
		"":     SortAsc,
		"asc":  SortAsc,
		"ASC":  SortAsc,
		"desc": SortDesc,
		"Desc": SortDesc,
	} {
		got, err := ParseSortDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortDirection("sideways")
	assert.Error(t, err)
}
