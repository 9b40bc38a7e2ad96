package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesFor(t *testing.T) {
	e := testPlayers(t)
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	preds, dropped := e.PredicatesFor(Filter{
		"country":  "HR",
		"rating":   int64(1500),
		"joinedAt": joined,
	})

	assert.Empty(t, dropped)
	assert.Equal(t, []Predicate{
		{Field: "country", Column: `"_e"."country"`, Value: "HR"},
		{Field: "joinedAt", Column: `"_e"."joined_at"`, Value: joined},
		{Field: "rating", Column: `"_e"."rating"`, Value: int64(1500)},
	}, preds)
}

func TestPredicatesForDropsInsteadOfFailing(t *testing.T) {
	e := testPlayers(t)

	tests := []struct {
		name   string
		filter Filter
		reason DropReason
	}{
		{"empty string", Filter{"country": ""}, DropEmpty},
		{"nil", Filter{"country": nil}, DropEmpty},
		{"false", Filter{"verified": false}, DropEmpty},
		{"zero", Filter{"rating": 0}, DropEmpty},
		{"zero float", Filter{"rating": 0.0}, DropEmpty},
		{"zero time", Filter{"joinedAt": time.Time{}}, DropEmpty},
		{"unknown key", Filter{"favouriteGame": "chess"}, DropUnknown},
		{"string for number", Filter{"rating": "high"}, DropTypeMismatch},
		{"number for string", Filter{"country": 7}, DropTypeMismatch},
		{"string for date", Filter{"joinedAt": "yesterday"}, DropTypeMismatch},
		{"string for bool", Filter{"verified": "yes"}, DropTypeMismatch},
		{"not on allow-list", Filter{"avatar": "a.png"}, DropNotFilterable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds, dropped := e.PredicatesFor(tt.filter)
			assert.Empty(t, preds)
			if assert.Len(t, dropped, 1) {
				assert.Equal(t, tt.reason, dropped[0].Reason)
			}
		})
	}
}

func TestPredicatesForKeepsValidKeysAlongsideDropped(t *testing.T) {
	e := testPlayers(t)

	preds, dropped := e.PredicatesFor(Filter{
		"country": "HR",
		"bogus":   "x",
		"handle":  "",
	})

	assert.Equal(t, []Predicate{{Field: "country", Column: `"_e"."country"`, Value: "HR"}}, preds)
	assert.Equal(t, []DroppedFilter{
		{Key: "bogus", Reason: DropUnknown},
		{Key: "handle", Reason: DropEmpty},
	}, dropped)
}

func TestPredicatesForEmptyFilter(t *testing.T) {
	e := testPlayers(t)

	preds, dropped := e.PredicatesFor(nil)
	assert.Empty(t, preds)
	assert.Empty(t, dropped)

	preds, dropped = e.PredicatesFor(Filter{})
	assert.Empty(t, preds)
	assert.Empty(t, dropped)
}
