package catalog

import (
	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/schema"
)

const (
	GroupMini     = "MINI"
	GroupBase     = "BASE"
	GroupExtended = "EXTENDED"
)

func groupsTable() (*schema.Table, error) {
	return schema.NewTable("groups", "id",
		[]schema.Column{
			{APIName: "id", Name: "id", Type: schema.TypeString},
			{APIName: "name", Name: "name", Type: schema.TypeString},
			{APIName: "description", Name: "description", Type: schema.TypeString},
			{APIName: "visibility", Name: "visibility", Type: schema.TypeString},
			{APIName: "ownerId", Name: "owner_id", Type: schema.TypeString},
			{APIName: "createdAt", Name: "created_at", Type: schema.TypeDate},
		},
		[]schema.Relation{
			{Name: "members", Table: "group_members", ForeignKey: "group_id"},
			{Name: "tournaments", Table: "tournaments", ForeignKey: "group_id"},
		},
	)
}

func groupDef(t *schema.Table) query.EntityDef {
	members := query.CountDistinct("members", "user_id")

	return query.EntityDef{
		Name:  "group",
		Table: t,
		Shapes: []query.ShapeDef{
			query.Shape(GroupMini, query.Cols("id", "name")),
			query.Shape(GroupBase,
				query.Cols("description", "visibility", "createdAt"),
				[]query.Field{query.Agg("memberCount", members)},
			),
			query.Shape(GroupExtended,
				query.Cols("ownerId"),
				[]query.Field{query.Agg("tournamentCount", query.CountDistinct("tournaments", "id"))},
			),
		},
		DefaultShape: GroupBase,
		Filterable:   []string{"name", "visibility", "ownerId"},
		Sorts: map[string]query.Expr{
			"name":        query.Column("name"),
			"createdAt":   query.Column("createdAt"),
			"memberCount": members,
		},
	}
}
