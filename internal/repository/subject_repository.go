package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

// SubjectRepository reads subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	subjects, err := selectByIDs[models.Subject](ctx, r.db, "SELECT id, name, code FROM subjects WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list subjects by id: %w", err)
	}
	return subjects, nil
}
