package schema

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes a SQL identifier, escaping embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ColumnType is the semantic type of a column as seen by callers.
type ColumnType string

const (
	TypeString  ColumnType = "STRING"
	TypeNumber  ColumnType = "NUMBER"
	TypeBoolean ColumnType = "BOOLEAN"
	TypeDate    ColumnType = "DATE"
)

type Column struct {
	APIName string
	Name    string
	Type    ColumnType
}

// Relation is a one-to-many traversal from the owning table to Table.
// Name doubles as the join alias, so one table reached in two directions
// needs two relations.
type Relation struct {
	Name       string
	Table      string
	LocalKey   string // column on the owning table, defaults to the primary key
	ForeignKey string // column on Table pointing back at LocalKey
}

// Table describes one entity's storage: its columns and reachable relations.
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []Column
	Relations  []Relation

	columnsByAPIName map[string]*Column
	relationsByName  map[string]*Relation
}

// NewTable indexes columns and relations. Duplicate names are rejected.
func NewTable(name, primaryKey string, columns []Column, relations []Relation) (*Table, error) {
	t := &Table{
		Name:             name,
		PrimaryKey:       primaryKey,
		Columns:          columns,
		Relations:        relations,
		columnsByAPIName: make(map[string]*Column, len(columns)),
		relationsByName:  make(map[string]*Relation, len(relations)),
	}

	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Name == "" {
			c.Name = c.APIName
		}
		if _, dup := t.columnsByAPIName[c.APIName]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c.APIName)
		}
		t.columnsByAPIName[c.APIName] = c
	}

	for i := range t.Relations {
		r := &t.Relations[i]
		if r.LocalKey == "" {
			r.LocalKey = primaryKey
		}
		if _, dup := t.relationsByName[r.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicate relation %q", name, r.Name)
		}
		t.relationsByName[r.Name] = r
	}

	if t.Column(primaryKey) == nil && t.columnByName(primaryKey) == nil {
		return nil, fmt.Errorf("table %s: primary key %q is not a declared column", name, primaryKey)
	}

	return t, nil
}

// Column finds a column by its API name.
func (t *Table) Column(apiName string) *Column {
	return t.columnsByAPIName[apiName]
}

// Relation finds a relation by name.
func (t *Table) Relation(name string) *Relation {
	return t.relationsByName[name]
}

func (t *Table) columnByName(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}
