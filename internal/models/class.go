package models

import "time"

// ClassRoom is a named grouping of students.
type ClassRoom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Section   *string   `db:"section" json:"section,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName joins the class name and its section when one is set.
func (c ClassRoom) DisplayName() string {
	if c.Section == nil || *c.Section == "" {
		return c.Name
	}
	return c.Name + " - " + *c.Section
}
