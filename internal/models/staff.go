package models

import "time"

// Staff represents an instructor. TAs reference their advisor by free-text
// full name, which is resolved against this table to derive a department.
type Staff struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
