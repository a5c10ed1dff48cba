package models

import "time"

// AcademicSession is a bounded academic period. At most one is current.
type AcademicSession struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Contains reports whether the date falls inside the session bounds.
func (s AcademicSession) Contains(date time.Time) bool {
	return !date.Before(s.StartDate) && !date.After(s.EndDate)
}
