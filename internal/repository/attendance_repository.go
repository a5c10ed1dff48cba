package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

// AttendanceRepository reads daily attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByClassDate returns the attendance of a class on one calendar date in
// the order the rows were recorded.
func (r *AttendanceRepository) ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, student_id, class_id, date, status, remarks, created_at
        FROM attendance WHERE class_id = $1 AND date = $2 ORDER BY created_at, id`
	records := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, classID, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
