package catalog

import (
	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/schema"
)

const (
	TournamentMini     = "MINI"
	TournamentBase     = "BASE"
	TournamentExtended = "EXTENDED"
)

func tournamentsTable() (*schema.Table, error) {
	return schema.NewTable("tournaments", "id",
		[]schema.Column{
			{APIName: "id", Name: "id", Type: schema.TypeString},
			{APIName: "name", Name: "name", Type: schema.TypeString},
			{APIName: "game", Name: "game", Type: schema.TypeString},
			{APIName: "status", Name: "status", Type: schema.TypeString},
			{APIName: "startDate", Name: "start_date", Type: schema.TypeDate},
			{APIName: "isPublic", Name: "is_public", Type: schema.TypeBoolean},
			{APIName: "maxParticipants", Name: "max_participants", Type: schema.TypeNumber},
			{APIName: "groupId", Name: "group_id", Type: schema.TypeString},
			{APIName: "createdAt", Name: "created_at", Type: schema.TypeDate},
		},
		[]schema.Relation{
			{Name: "participants", Table: "tournament_participants", ForeignKey: "tournament_id"},
			{Name: "matchups", Table: "matchups", ForeignKey: "tournament_id"},
		},
	)
}

func tournamentDef(t *schema.Table) query.EntityDef {
	participants := query.CountDistinct("participants", "user_id")

	return query.EntityDef{
		Name:  "tournament",
		Table: t,
		Shapes: []query.ShapeDef{
			query.Shape(TournamentMini, query.Cols("id", "name")),
			query.Shape(TournamentBase,
				query.Cols("game", "status", "startDate", "isPublic"),
				[]query.Field{query.Agg("participantCount", participants)},
			),
			query.Shape(TournamentExtended,
				query.Cols("maxParticipants", "groupId", "createdAt"),
				[]query.Field{query.Agg("matchupCount", query.CountDistinct("matchups", "id"))},
			),
		},
		DefaultShape: TournamentBase,
		Filterable:   []string{"game", "status", "groupId", "isPublic", "startDate"},
		Sorts: map[string]query.Expr{
			"name":             query.Column("name"),
			"startDate":        query.Column("startDate"),
			"createdAt":        query.Column("createdAt"),
			"participantCount": participants,
		},
		Invariants: []query.Invariant{
			query.Requires("isPublic", true),
		},
	}
}
