package models

import "time"

// Leave request statuses. Only approved intervals exclude a TA.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveInterval is an inclusive date range during which a TA is away.
type LeaveInterval struct {
	ID        string    `db:"id" json:"id"`
	TAEmail   string    `db:"ta_email" json:"ta_email"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	LeaveType string    `db:"leave_type" json:"leave_type"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
