// Package catalog declares the entities served by the query layer.
package catalog

import (
	"fmt"

	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/schema"
)

type entitySource struct {
	table func() (*schema.Table, error)
	def   func(*schema.Table) query.EntityDef
}

var sources = []entitySource{
	{table: usersTable, def: userDef},
	{table: groupsTable, def: groupDef},
	{table: tournamentsTable, def: tournamentDef},
}

// New compiles every entity into a registry. Call once at startup.
func New() (*query.Registry, error) {
	entities := make([]*query.Entity, 0, len(sources))
	for _, src := range sources {
		t, err := src.table()
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		e, err := query.NewEntity(src.def(t))
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		entities = append(entities, e)
	}
	return query.NewRegistry(entities...)
}

// MustNew is New for process startup; it panics on an inconsistent catalog.
func MustNew() *query.Registry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}
