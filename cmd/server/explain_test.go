package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExplainList(t *testing.T) {
	out, err := runCLI(t, "explain",
		"--entity", "user",
		"--shape", "MINI",
		"--filter", "country=HR",
		"--filter", "nickname=x",
		"--sort", "followers:desc",
		"--page", "2",
		"--page-size", "10",
		"--count")
	require.NoError(t, err)

	assert.Contains(t, out, "-- ignored filter nickname (unknown)")
	assert.Contains(t, out, `LEFT JOIN "user_follows" "_followers"`)
	assert.Contains(t, out, `WHERE "_e"."country" = $1`)
	assert.Contains(t, out, "LIMIT 10 OFFSET 10")
	assert.Contains(t, out, `SELECT count(*) FROM "users" "_e" WHERE "_e"."country" = $1`)
	assert.Contains(t, out, "-- args: [HR]")
}

func TestExplainSingleSQLite(t *testing.T) {
	out, err := runCLI(t, "explain", "--entity", "user", "--id", "abc", "--shape", "MINI", "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, `WHERE "_e"."id" = ? AND "_e"."email_verified" = ? AND "_e"."onboarding_complete" = ? LIMIT 1`)
}

func TestExplainErrors(t *testing.T) {
	_, err := runCLI(t, "explain", "--entity", "league")
	assert.ErrorContains(t, err, "unknown entity")

	_, err = runCLI(t, "explain", "--entity", "user", "--sort", "email")
	assert.ErrorContains(t, err, "sort")

	_, err = runCLI(t, "explain", "--entity", "user", "--filter", "country")
	assert.ErrorContains(t, err, "key=value")
}
