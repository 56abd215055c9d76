package dto

// UpdateSettingsRequest replaces the global admin configuration.
// MaxTAWorkload of zero disables the dean-exam workload cap.
type UpdateSettingsRequest struct {
	CurrentSemester string `json:"current_semester" validate:"required"`
	MaxTAWorkload   int    `json:"max_ta_workload" validate:"min=0"`
}
