package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const sessionColumns = `id, name, start_date, end_date, is_current, created_at, updated_at`

// SessionRepository reads academic sessions and owns the current-session marker.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListCurrent returns every session flagged current. More than one row means
// the marker is inconsistent; callers decide how to report that.
func (r *SessionRepository) ListCurrent(ctx context.Context) ([]models.AcademicSession, error) {
	sessions := make([]models.AcademicSession, 0)
	query := "SELECT " + sessionColumns + " FROM academic_sessions WHERE is_current = TRUE ORDER BY start_date DESC"
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list current sessions: %w", err)
	}
	return sessions, nil
}

// FindByID fetches one session. sql.ErrNoRows is returned unwrapped.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AcademicSession, error) {
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, "SELECT "+sessionColumns+" FROM academic_sessions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByIDs(ctx context.Context, ids []string) ([]models.AcademicSession, error) {
	sessions, err := selectByIDs[models.AcademicSession](ctx, r.db, "SELECT "+sessionColumns+" FROM academic_sessions WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list sessions by id: %w", err)
	}
	return sessions, nil
}

// SetCurrent marks id as the only current session. The row is locked, every
// other current flag is cleared, and both writes commit together.
func (r *SessionRepository) SetCurrent(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM academic_sessions WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("lock session: %w", err)
	}

	now := time.Now().UTC()
	const clearQuery = `UPDATE academic_sessions SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE AND id <> $2`
	if _, err = tx.ExecContext(ctx, clearQuery, now, id); err != nil {
		return fmt.Errorf("clear current sessions: %w", err)
	}
	const setQuery = `UPDATE academic_sessions SET is_current = TRUE, updated_at = $1 WHERE id = $2`
	if _, err = tx.ExecContext(ctx, setQuery, now, id); err != nil {
		return fmt.Errorf("set current session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit current session: %w", err)
	}
	return nil
}
