package repository

import (
	"database/sql/driver"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

// arrayArg matches a text array bound with pq.Array.
type arrayArg []string

func (a arrayArg) Match(v driver.Value) bool {
	want, err := pq.StringArray(a).Value()
	if err != nil {
		return false
	}
	switch got := v.(type) {
	case string:
		return got == want
	case []byte:
		return string(got) == want
	default:
		return false
	}
}

func strPtr(v string) *string { return &v }
