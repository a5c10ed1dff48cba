package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const studentColumns = `id, user_id, student_number, status, class_id, admission_date, guardian_name, created_at, updated_at`

// StudentRepository reads student rows without joining profiles or classes.
type StudentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter in insertion order.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at, id", studentColumns, strings.Join(conditions, " AND "))
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches one student. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	students, err := selectByIDs[models.Student](ctx, r.db, "SELECT "+studentColumns+" FROM students WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list students by id: %w", err)
	}
	return students, nil
}

// ListByUserIDs resolves owning accounts back to student rows.
func (r *StudentRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Student, error) {
	students, err := selectByIDs[models.Student](ctx, r.db, "SELECT "+studentColumns+" FROM students WHERE user_id = ANY($1)", userIDs)
	if err != nil {
		return nil, fmt.Errorf("list students by user: %w", err)
	}
	return students, nil
}

// SearchByNumber matches a case-insensitive substring of the student number.
func (r *StudentRepository) SearchByNumber(ctx context.Context, q string, limit int) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE student_number ILIKE $1 ORDER BY student_number LIMIT $2"
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, containsPattern(q), limit); err != nil {
		return nil, fmt.Errorf("search students by number: %w", err)
	}
	return students, nil
}
