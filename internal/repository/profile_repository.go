package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const profileColumns = `id, user_id, full_name, email, phone, photo_url, created_at, updated_at`

// ProfileRepository reads identity profiles keyed by their owning account.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	profiles, err := selectByIDs[models.Profile](ctx, r.db, "SELECT "+profileColumns+" FROM profiles WHERE user_id = ANY($1)", userIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles by user: %w", err)
	}
	return profiles, nil
}

// SearchByName matches a case-insensitive substring of the full name. Only
// profiles that belong to a student count towards the limit.
func (r *ProfileRepository) SearchByName(ctx context.Context, q string, limit int) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE full_name ILIKE $1" +
		" AND EXISTS (SELECT 1 FROM students WHERE students.user_id = profiles.user_id)" +
		" ORDER BY full_name LIMIT $2"
	profiles := make([]models.Profile, 0)
	if err := r.db.SelectContext(ctx, &profiles, query, containsPattern(q), limit); err != nil {
		return nil, fmt.Errorf("search profiles by name: %w", err)
	}
	return profiles, nil
}
