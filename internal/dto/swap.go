package dto

// CreateSwapRequest asks another TA to take over an assignment.
type CreateSwapRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	RequestedTo  string `json:"requested_to" validate:"required,email"`
}

// RespondSwapRequest settles a pending swap.
type RespondSwapRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// StaffReassignRequest moves an assignment to a new TA directly.
type StaffReassignRequest struct {
	TAEmail string `json:"ta_email" validate:"required,email"`
}
