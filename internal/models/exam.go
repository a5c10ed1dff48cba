package models

import "time"

// ExamType tags the kind of assessment.
type ExamType string

const (
	ExamTypeMidterm    ExamType = "midterm"
	ExamTypeFinal      ExamType = "final"
	ExamTypeQuiz       ExamType = "quiz"
	ExamTypeAssignment ExamType = "assignment"
	ExamTypePractical  ExamType = "practical"
)

// Exam is scoped to a class, a subject and a session.
type Exam struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ClassID      string    `db:"class_id" json:"class_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	Type         ExamType  `db:"type" json:"type"`
	ExamDate     time.Time `db:"exam_date" json:"exam_date"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	MaxMarks     float64   `db:"max_marks" json:"max_marks"`
	PassingMarks *float64  `db:"passing_marks" json:"passing_marks,omitempty"`
}

// ExamResult stores the marks of one student in one exam. Nil marks mean the
// student did not sit the exam.
type ExamResult struct {
	ID            string   `db:"id" json:"id"`
	ExamID        string   `db:"exam_id" json:"exam_id"`
	StudentID     string   `db:"student_id" json:"student_id"`
	MarksObtained *float64 `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Remarks       *string  `db:"remarks" json:"remarks,omitempty"`
}
