package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		opts      *ListQueryOptions
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "bare table",
			opts:      NewListQueryOptions("mail_outbox"),
			wantQuery: `SELECT * FROM "mail_outbox"`,
		},
		{
			name: "filters order and page",
			opts: NewListQueryOptions("mail_outbox",
				WithColumns("id", "status"),
				WithCondition(WhereCond("status", Equal, "failed"), true),
				WithCondition(WhereCond("kind", Equal, "ignored"), false),
				WithOrderBy("created_at", "desc"),
				WithPage(25, 50),
			),
			wantQuery: `SELECT "id", "status" FROM "mail_outbox" WHERE "status" = $1 ORDER BY "created_at" DESC LIMIT $2 OFFSET $3`,
			wantArgs:  []any{"failed", 25, 50},
		},
		{
			name: "in expands placeholders",
			opts: NewListQueryOptions("mail_outbox",
				WithCondition(WhereCond("status", In, []string{"pending", "sending"}), true),
				WithCondition(WhereCond("attempts", GreaterThan, 2), true),
			),
			wantQuery: `SELECT * FROM "mail_outbox" WHERE "status" IN ($1, $2) AND "attempts" > $3`,
			wantArgs:  []any{"pending", "sending", 2},
		},
		{
			name: "empty in is skipped",
			opts: NewListQueryOptions("mail_outbox",
				WithCondition(WhereCond("status", In, []string{}), true),
			),
			wantQuery: `SELECT * FROM "mail_outbox"`,
		},
		{
			name: "count ignores order and page",
			opts: NewListQueryOptions("mail_outbox",
				WithCountOnly(),
				WithCondition(WhereCond("status", Equal, "sent"), true),
				WithOrderBy("created_at", "DESC"),
				WithPage(10, 0),
			),
			wantQuery: `SELECT COUNT(*) FROM "mail_outbox" WHERE "status" = $1`,
			wantArgs:  []any{"sent"},
		},
		{
			name: "identifiers are quoted",
			opts: NewListQueryOptions(`mail"; DROP TABLE x; --`,
				WithOrderBy("o.created_at", "sideways"),
			),
			wantQuery: `SELECT * FROM "mail""; DROP TABLE x; --" ORDER BY "o"."created_at"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := BuildListQuery(tt.opts)
			assert.Equal(t, tt.wantQuery, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildListQuery_Nil(t *testing.T) {
	q, args := BuildListQuery(nil)
	assert.Empty(t, q)
	assert.Nil(t, args)
}
