package models

// GlobalSettings is the single-row admin configuration.
// MaxTAWorkload of zero means no workload cap is configured.
type GlobalSettings struct {
	ID            int    `db:"id" json:"id"`
	Semester      string `db:"current_semester" json:"current_semester"`
	MaxTAWorkload int    `db:"max_ta_workload" json:"max_ta_workload"`
}

// WorkloadCap returns the configured cap, or nil when no cap applies.
func (s *GlobalSettings) WorkloadCap() *int {
	if s == nil || s.MaxTAWorkload <= 0 {
		return nil
	}
	v := s.MaxTAWorkload
	return &v
}
