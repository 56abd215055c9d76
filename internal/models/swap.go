package models

import "time"

// Swap request statuses.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCancelled = "cancelled"
)

// SwapRequest asks another TA to take over a proctoring assignment.
type SwapRequest struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	RequestedBy  string     `db:"requested_by" json:"requested_by"`
	RequestedTo  string     `db:"requested_to" json:"requested_to"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	RespondedAt  *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}
