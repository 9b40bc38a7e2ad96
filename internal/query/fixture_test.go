package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlekbai/tourney/internal/schema"
)

func testPlayersTable(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.NewTable("players", "id",
		[]schema.Column{
			{APIName: "id", Type: schema.TypeString},
			{APIName: "handle", Type: schema.TypeString},
			{APIName: "avatar", Name: "avatar_url", Type: schema.TypeString},
			{APIName: "country", Type: schema.TypeString},
			{APIName: "rating", Type: schema.TypeNumber},
			{APIName: "verified", Name: "is_verified", Type: schema.TypeBoolean},
			{APIName: "joinedAt", Name: "joined_at", Type: schema.TypeDate},
		},
		[]schema.Relation{
			{Name: "followers", Table: "follows", ForeignKey: "followee_id"},
			{Name: "following", Table: "follows", ForeignKey: "follower_id"},
		},
	)
	require.NoError(t, err)
	return table
}

func testPlayersDef(t *testing.T) EntityDef {
	t.Helper()
	followers := CountDistinct("followers", "follower_id")
	return EntityDef{
		Name:  "player",
		Table: testPlayersTable(t),
		Shapes: []ShapeDef{
			Shape("MINI", Cols("id", "handle")),
			Shape("CARD", Cols("avatar", "country")),
			Shape("FULL",
				Cols("rating", "joinedAt"),
				[]Field{
					Agg("followers", followers),
					Agg("following", CountDistinct("following", "followee_id")),
				},
			),
		},
		DefaultShape: "CARD",
		Filterable:   []string{"handle", "country", "rating", "verified", "joinedAt"},
		Sorts: map[string]Expr{
			"handle":    Column("handle"),
			"id":        Column("id"),
			"followers": followers,
		},
		Invariants: []Invariant{Requires("verified", true)},
	}
}

func testPlayers(t *testing.T) *Entity {
	t.Helper()
	e, err := NewEntity(testPlayersDef(t))
	require.NoError(t, err)
	return e
}

func aliases(ps []Projection) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Alias
	}
	return out
}
