package dto

// ConfirmAssignmentRequest carries the final TA list for an exam. The list
// is typically the ladder's proposal, possibly edited by the requester, and
// must match the exam's required proctor count exactly.
type ConfirmAssignmentRequest struct {
	TAEmails []string `json:"ta_emails" validate:"required,min=1,dive,email"`
}
