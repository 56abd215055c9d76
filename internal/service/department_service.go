package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type staffDirectory interface {
	List(ctx context.Context) ([]models.Staff, error)
	FindByFullName(ctx context.Context, fullName string) (*models.Staff, error)
	ListByDepartment(ctx context.Context, department string) ([]models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
}

// DepartmentService resolves a TA's department from its advisor free-text
// name. The advisor field carries "First Last" with no foreign key, so
// resolution is an exact, case-insensitive full-name match against the
// staff directory.
type DepartmentService struct {
	staff  staffDirectory
	logger *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(staff staffDirectory, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{staff: staff, logger: logger}
}

// Resolve returns the department for an advisor name, or "" when the name
// is blank or matches no staff member.
func (s *DepartmentService) Resolve(ctx context.Context, advisorName string) (string, error) {
	name := strings.TrimSpace(advisorName)
	if name == "" {
		return "", nil
	}
	staff, err := s.staff.FindByFullName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve advisor department")
	}
	return staff.Department, nil
}

// DirectoryMap loads the whole staff directory once and returns a lowercased
// full-name to department map. Pool derivation and eligibility snapshots use
// this to resolve many advisors without per-TA queries.
func (s *DepartmentService) DirectoryMap(ctx context.Context) (map[string]string, error) {
	staff, err := s.staff.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff directory")
	}
	dir := make(map[string]string, len(staff))
	for _, member := range staff {
		dir[strings.ToLower(strings.TrimSpace(member.FullName))] = member.Department
	}
	return dir, nil
}

// Staff returns the instructors of one department.
func (s *DepartmentService) Staff(ctx context.Context, department string) ([]models.Staff, error) {
	staff, err := s.staff.ListByDepartment(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department staff")
	}
	return staff, nil
}

// Register adds an instructor to the directory.
func (s *DepartmentService) Register(ctx context.Context, staff *models.Staff) error {
	staff.FullName = strings.TrimSpace(staff.FullName)
	if staff.FullName == "" || strings.TrimSpace(staff.Department) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "full_name and department are required")
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	s.logger.Info("staff registered",
		zap.String("full_name", staff.FullName),
		zap.String("department", staff.Department))
	return nil
}

// LookupDepartment resolves an advisor name against a preloaded directory map.
func LookupDepartment(directory map[string]string, advisorName string) string {
	name := strings.ToLower(strings.TrimSpace(advisorName))
	if name == "" {
		return ""
	}
	return directory[name]
}
