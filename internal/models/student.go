package models

import "time"

// StudentStatus represents the enrollment state of a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated:
		return true
	default:
		return false
	}
}

// Student links a profile to a school identity.
type Student struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	StudentNumber string        `db:"student_number" json:"student_number"`
	Status        StudentStatus `db:"status" json:"status"`
	ClassID       *string       `db:"class_id" json:"class_id,omitempty"`
	AdmissionDate time.Time     `db:"admission_date" json:"admission_date"`
	GuardianName  *string       `db:"guardian_name" json:"guardian_name,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter scopes flat student reads.
type StudentFilter struct {
	ClassID string
	Status  *StudentStatus
}
