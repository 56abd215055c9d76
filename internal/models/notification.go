package models

import "time"

// Notification is a message fanned out to a user on workflow events.
type Notification struct {
	ID             string    `db:"id" json:"id"`
	RecipientEmail string    `db:"recipient_email" json:"recipient_email"`
	Message        string    `db:"message" json:"message"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
