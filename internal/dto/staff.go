package dto

// CreateStaffRequest registers an instructor in the staff directory.
type CreateStaffRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Department string `json:"department" validate:"required"`
}
