package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const classColumns = `id, name, section, created_at, updated_at`

// ClassRepository reads class rows.
type ClassRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID fetches one class. sql.ErrNoRows is returned unwrapped.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassRoom, error) {
	var class models.ClassRoom
	if err := r.db.GetContext(ctx, &class, "SELECT "+classColumns+" FROM classes WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) ListByIDs(ctx context.Context, ids []string) ([]models.ClassRoom, error) {
	classes, err := selectByIDs[models.ClassRoom](ctx, r.db, "SELECT "+classColumns+" FROM classes WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list classes by id: %w", err)
	}
	return classes, nil
}
