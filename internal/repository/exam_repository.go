package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const examColumns = `id, name, class_id, subject_id, session_id, type, exam_date, start_time, end_time, max_marks, passing_marks`

// ExamRepository reads exam schedules.
type ExamRepository struct {
	db *sqlx.DB
}

func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID fetches one exam. sql.ErrNoRows is returned unwrapped.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, "SELECT "+examColumns+" FROM exams WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByClassSession returns a class timetable for one session ordered by
// date and start time.
func (r *ExamRepository) ListByClassSession(ctx context.Context, classID, sessionID string) ([]models.Exam, error) {
	query := "SELECT " + examColumns + " FROM exams WHERE class_id = $1 AND session_id = $2 ORDER BY exam_date, start_time NULLS LAST, id"
	exams := make([]models.Exam, 0)
	if err := r.db.SelectContext(ctx, &exams, query, classID, sessionID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// ExamResultRepository reads marks.
type ExamResultRepository struct {
	db *sqlx.DB
}

func NewExamResultRepository(db *sqlx.DB) *ExamResultRepository {
	return &ExamResultRepository{db: db}
}

func (r *ExamResultRepository) ListByExam(ctx context.Context, examID string) ([]models.ExamResult, error) {
	const query = `SELECT id, exam_id, student_id, marks_obtained, remarks FROM exam_results WHERE exam_id = $1`
	results := make([]models.ExamResult, 0)
	if err := r.db.SelectContext(ctx, &results, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}
