package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// StaffRepository manages persistence for instructors.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns the full staff directory.
func (r *StaffRepository) List(ctx context.Context) ([]models.Staff, error) {
	const query = `SELECT id, email, full_name, department, created_at FROM staff ORDER BY full_name`
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// FindByFullName matches a staff member by exact full name, case-insensitively.
// TA advisor fields are free text, so this is the department lookup path.
func (r *StaffRepository) FindByFullName(ctx context.Context, fullName string) (*models.Staff, error) {
	const query = `SELECT id, email, full_name, department, created_at FROM staff WHERE LOWER(full_name) = LOWER($1)`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, fullName); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ListByDepartment returns staff for a department, case-insensitively.
func (r *StaffRepository) ListByDepartment(ctx context.Context, department string) ([]models.Staff, error) {
	const query = `SELECT id, email, full_name, department, created_at FROM staff WHERE LOWER(department) = LOWER($1)`
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, department); err != nil {
		return nil, fmt.Errorf("list staff by department: %w", err)
	}
	return staff, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO staff (id, email, full_name, department, created_at)
		VALUES (:id, :email, :full_name, :department, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}
