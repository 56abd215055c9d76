package models

import "time"

// TA program tiers. Courses numbered 500 and above are restricted to the
// senior tier unless the restriction is overridden.
const (
	ProgramMS  = "MS"
	ProgramPhD = "PhD"
)

// TA represents a teaching assistant eligible for proctoring duty.
type TA struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Advisor   *string   `db:"advisor" json:"advisor,omitempty"`
	Program   string    `db:"program" json:"program"`
	Workload  int       `db:"workload" json:"workload"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AdvisorName returns the advisor free-text name or an empty string.
func (t TA) AdvisorName() string {
	if t.Advisor == nil {
		return ""
	}
	return *t.Advisor
}

// TAFilter scopes TA listing queries.
type TAFilter struct {
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
