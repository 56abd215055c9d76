package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// AllocationRepository manages manual TA-to-course allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// ListEmailsForCourses returns TAs manually allocated to any of the given
// course codes. Feeds the solver's affinity bonus.
func (r *AllocationRepository) ListEmailsForCourses(ctx context.Context, courseCodes []string) ([]string, error) {
	if len(courseCodes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT DISTINCT ta_email FROM course_allocations WHERE course_code IN (?)", courseCodes)
	if err != nil {
		return nil, fmt.Errorf("build allocation query: %w", err)
	}
	query = r.db.Rebind(query)
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, args...); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return emails, nil
}

// Create inserts an allocation record.
func (r *AllocationRepository) Create(ctx context.Context, alloc *models.CourseAllocation) error {
	if alloc.ID == "" {
		alloc.ID = uuid.NewString()
	}
	const query = `INSERT INTO course_allocations (id, course_code, ta_email, created_at)
		VALUES (:id, :course_code, :ta_email, NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, alloc); err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}
