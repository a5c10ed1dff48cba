package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueIDs drops blanks and duplicates while keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// selectByIDs runs query with the id set bound to $1 as a text array. An
// empty id set returns an empty slice without touching the database.
func selectByIDs[T any](ctx context.Context, db sqlx.QueryerContext, query string, ids []string) ([]T, error) {
	ids = uniqueIDs(ids)
	out := make([]T, 0)
	if len(ids) == 0 {
		return out, nil
	}
	if err := sqlx.SelectContext(ctx, db, &out, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a substring LIKE pattern. Wildcards in q match
// literally under the default backslash escape.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
