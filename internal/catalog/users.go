package catalog

import (
	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/schema"
)

// User response shapes, poorest first.
const (
	UserMini            = "MINI"
	UserMiniWithPicture = "MINI_WITH_PICTURE"
	UserMiniWithCountry = "MINI_WITH_COUNTRY"
	UserBase            = "BASE"
	UserExtended        = "EXTENDED"
	UserAdmin           = "ADMIN"
)

func usersTable() (*schema.Table, error) {
	return schema.NewTable("users", "id",
		[]schema.Column{
			{APIName: "id", Name: "id", Type: schema.TypeString},
			{APIName: "username", Name: "username", Type: schema.TypeString},
			{APIName: "email", Name: "email", Type: schema.TypeString},
			{APIName: "profilePicture", Name: "profile_picture", Type: schema.TypeString},
			{APIName: "country", Name: "country", Type: schema.TypeString},
			{APIName: "bio", Name: "bio", Type: schema.TypeString},
			{APIName: "elo", Name: "elo", Type: schema.TypeNumber},
			{APIName: "emailVerified", Name: "email_verified", Type: schema.TypeBoolean},
			{APIName: "onboardingComplete", Name: "onboarding_complete", Type: schema.TypeBoolean},
			{APIName: "createdAt", Name: "created_at", Type: schema.TypeDate},
			{APIName: "updatedAt", Name: "updated_at", Type: schema.TypeDate},
		},
		[]schema.Relation{
			// user_follows is traversed both ways: rows where the user is
			// followed, and rows where the user follows someone.
			{Name: "followers", Table: "user_follows", ForeignKey: "following_id"},
			{Name: "following", Table: "user_follows", ForeignKey: "follower_id"},
			{Name: "tournaments", Table: "tournament_participants", ForeignKey: "user_id"},
		},
	)
}

func userDef(t *schema.Table) query.EntityDef {
	followers := query.CountDistinct("followers", "follower_id")
	following := query.CountDistinct("following", "following_id")

	return query.EntityDef{
		Name:  "user",
		Table: t,
		Shapes: []query.ShapeDef{
			query.Shape(UserMini, query.Cols("id", "username")),
			query.Shape(UserMiniWithPicture, query.Cols("profilePicture")),
			query.Shape(UserMiniWithCountry, query.Cols("country")),
			query.Shape(UserBase,
				query.Cols("bio", "elo", "createdAt"),
				[]query.Field{query.Agg("followers", followers)},
			),
			query.Shape(UserExtended, []query.Field{
				query.Agg("following", following),
				query.Agg("tournamentsPlayed", query.CountDistinct("tournaments", "tournament_id")),
			}),
			query.Shape(UserAdmin, query.Cols("email", "emailVerified", "onboardingComplete", "updatedAt")),
		},
		DefaultShape: UserBase,
		Filterable:   []string{"username", "country", "elo", "emailVerified", "createdAt"},
		Sorts: map[string]query.Expr{
			"username":  query.Column("username"),
			"country":   query.Column("country"),
			"elo":       query.Column("elo"),
			"createdAt": query.Column("createdAt"),
			"followers": followers,
			"following": following,
		},
		Invariants: []query.Invariant{
			query.Requires("emailVerified", true),
			query.Requires("onboardingComplete", true),
		},
	}
}
