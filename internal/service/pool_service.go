package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type taDirectory interface {
	ListActive(ctx context.Context) ([]models.TA, error)
}

// PoolService derives the initial candidate set for a solving run.
//
// Ordinary exams restrict the pool to TAs whose advisor resolves to the
// exam's department. Dean exams span departments, so their pool is every
// active TA, bounded by the global workload cap when one is configured.
type PoolService struct {
	tas    taDirectory
	logger *zap.Logger
}

// NewPoolService constructs a PoolService.
func NewPoolService(tas taDirectory, logger *zap.Logger) *PoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolService{tas: tas, logger: logger}
}

// Build returns the candidate pool for the snapshot's exam. restrictDept
// applies the department restriction for ordinary exams; the override
// ladder's final stage passes false to rebuild the pool over all active TAs.
func (s *PoolService) Build(ctx context.Context, snap *EligibilitySnapshot, restrictDept bool) ([]models.TA, error) {
	active, err := s.tas.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active TAs")
	}

	if snap.Exam.Dean {
		pool := make([]models.TA, 0, len(active))
		for _, ta := range active {
			if snap.Cap != nil && ta.Workload > *snap.Cap {
				continue
			}
			pool = append(pool, ta)
		}
		return pool, nil
	}

	if !restrictDept {
		return active, nil
	}

	dept := snap.Exam.Department()
	pool := make([]models.TA, 0, len(active))
	for _, ta := range active {
		if snap.Department(ta) == dept {
			pool = append(pool, ta)
		}
	}
	return pool, nil
}
