// Package storetest provides a seeded in-memory SQLite store for transport
// tests.
package storetest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlekbai/tourney/internal/store"
)

// Seeded user IDs.
const (
	Ann = "0b9f4f4e-8d3a-4c1e-9d0a-6a2f1b3c4d01"
	Bob = "0b9f4f4e-8d3a-4c1e-9d0a-6a2f1b3c4d02"
	Cid = "0b9f4f4e-8d3a-4c1e-9d0a-6a2f1b3c4d03"
	// Dan is unverified, so single-item lookups never return that row.
	Dan = "0b9f4f4e-8d3a-4c1e-9d0a-6a2f1b3c4d04"
)

const ddl = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	profile_picture TEXT,
	country TEXT,
	bio TEXT,
	elo INTEGER NOT NULL DEFAULT 1000,
	email_verified INTEGER NOT NULL DEFAULT 0,
	onboarding_complete INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT '2024-01-01T00:00:00Z',
	updated_at TEXT NOT NULL DEFAULT '2024-01-01T00:00:00Z'
);
CREATE TABLE user_follows (
	follower_id TEXT NOT NULL REFERENCES users(id),
	following_id TEXT NOT NULL REFERENCES users(id),
	PRIMARY KEY (follower_id, following_id)
);
CREATE TABLE tournament_participants (
	tournament_id TEXT NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id),
	PRIMARY KEY (tournament_id, user_id)
);
`

// New opens an in-memory database, seeds four users and their follows, and
// returns a store over it. The database is closed with the test.
func New(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()

	db, err := store.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, ddl)
	require.NoError(t, err)

	users := []struct {
		id, username, country string
		elo                   int
		verified              bool
	}{
		{Ann, "ann", "HR", 1500, true},
		{Bob, "bob", "DE", 1200, true},
		{Cid, "cid", "HR", 1300, true},
		{Dan, "dan", "HR", 1100, false},
	}
	for _, u := range users {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, username, email, country, elo, email_verified, onboarding_complete) VALUES (?, ?, ?, ?, ?, ?, 1)`,
			u.id, u.username, u.username+"@example.com", u.country, u.elo, u.verified)
		require.NoError(t, err)
	}

	follows := [][2]string{{Bob, Ann}, {Cid, Ann}, {Ann, Cid}}
	for _, f := range follows {
		_, err := db.ExecContext(ctx, `INSERT INTO user_follows (follower_id, following_id) VALUES (?, ?)`, f[0], f[1])
		require.NoError(t, err)
	}

	return store.New(store.NewSQLBackend(db), 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
