package query

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderListWithoutPredicates(t *testing.T) {
	e := testPlayers(t)
	plan, err := quietAssembler().BuildList(e, ListParams{Shape: "MINI", Page: DefaultPagination()})
	require.NoError(t, err)

	sql, args, err := Render(plan, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "_e"."id" AS "id", "_e"."handle" AS "handle" FROM "players" "_e" ORDER BY "_e"."id" ASC LIMIT 20`,
		sql)
	assert.Empty(t, args)
}

func TestRenderListFull(t *testing.T) {
	e := testPlayers(t)
	plan, err := quietAssembler().BuildList(e, ListParams{
		Shape:  "MINI",
		Filter: Filter{"country": "HR"},
		Sort:   &SortSpec{Field: "followers", Direction: SortDesc},
		Page:   Pagination{Page: 2, PageSize: 10},
	})
	require.NoError(t, err)

	sql, args, err := Render(plan, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "_e"."id" AS "id", "_e"."handle" AS "handle" FROM "players" "_e"`+
			` LEFT JOIN "follows" "_followers" ON "_followers"."followee_id" = "_e"."id"`+
			` WHERE "_e"."country" = $1`+
			` GROUP BY "_e"."id"`+
			` ORDER BY COUNT(DISTINCT "_followers"."follower_id") DESC, "_e"."id" DESC`+
			` LIMIT 10 OFFSET 10`,
		sql)
	assert.Equal(t, []any{"HR"}, args)
}

func TestRenderSameTableJoinedTwice(t *testing.T) {
	e := testPlayers(t)
	plan, err := quietAssembler().BuildList(e, ListParams{Shape: "FULL", Page: DefaultPagination()})
	require.NoError(t, err)

	sql, _, err := Render(plan, sq.Question)
	require.NoError(t, err)
	assert.Contains(t, sql, `LEFT JOIN "follows" "_followers" ON "_followers"."followee_id" = "_e"."id"`)
	assert.Contains(t, sql, `LEFT JOIN "follows" "_following" ON "_following"."follower_id" = "_e"."id"`)
	assert.Contains(t, sql, `COUNT(DISTINCT "_followers"."follower_id") AS "followers"`)
	assert.Contains(t, sql, `COUNT(DISTINCT "_following"."followee_id") AS "following"`)
	assert.NotContains(t, sql, "INNER JOIN")
}

func TestRenderCount(t *testing.T) {
	e := testPlayers(t)
	plan, err := quietAssembler().BuildList(e, ListParams{
		Shape:     "FULL",
		Filter:    Filter{"country": "HR"},
		Sort:      &SortSpec{Field: "followers"},
		Page:      Pagination{Page: 4, PageSize: 5},
		WantCount: true,
	})
	require.NoError(t, err)

	sql, args, err := RenderCount(plan, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t, `SELECT count(*) FROM "players" "_e" WHERE "_e"."country" = $1`, sql)
	assert.Equal(t, []any{"HR"}, args)
}

func TestRenderCountDoesNotChangeListQuery(t *testing.T) {
	e := testPlayers(t)
	a := quietAssembler()
	params := ListParams{
		Shape:  "FULL",
		Filter: Filter{"country": "HR"},
		Sort:   &SortSpec{Field: "handle"},
		Page:   Pagination{Page: 2, PageSize: 5},
	}

	without, err := a.BuildList(e, params)
	require.NoError(t, err)
	params.WantCount = true
	with, err := a.BuildList(e, params)
	require.NoError(t, err)

	sqlWithout, argsWithout, err := Render(without, sq.Dollar)
	require.NoError(t, err)
	sqlWith, argsWith, err := Render(with, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t, sqlWithout, sqlWith)
	assert.Equal(t, argsWithout, argsWith)
}

func TestRenderSingle(t *testing.T) {
	e := testPlayers(t)
	plan, err := quietAssembler().BuildSingle(e, "p-1", "MINI")
	require.NoError(t, err)

	sql, args, err := Render(plan, sq.Dollar)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "_e"."id" AS "id", "_e"."handle" AS "handle" FROM "players" "_e" WHERE "_e"."id" = $1 AND "_e"."is_verified" = $2 LIMIT 1`,
		sql)
	assert.Equal(t, []any{"p-1", true}, args)

	_, _, err = RenderCount(plan, sq.Dollar)
	assert.Error(t, err)
}
