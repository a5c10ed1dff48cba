package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryListCurrent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "is_current", "created_at", "updated_at"}).
		AddRow("ses-1", "2024/2025", start, start.AddDate(1, 0, -1), true, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM academic_sessions WHERE is_current = TRUE")).WillReturnRows(rows)

	sessions, err := repo.ListCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsCurrent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositorySetCurrent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM academic_sessions WHERE id = $1 FOR UPDATE")).
		WithArgs("ses-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ses-2"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_sessions SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "ses-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_sessions SET is_current = TRUE, updated_at = $1 WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), "ses-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetCurrent(context.Background(), "ses-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositorySetCurrentUnknownRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM academic_sessions")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.SetCurrent(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
