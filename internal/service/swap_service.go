package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type swapStore interface {
	Create(ctx context.Context, swap *models.SwapRequest) error
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SwapRequest, error)
	ExistsPendingForAssignment(ctx context.Context, assignmentID string) (bool, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id, status string) error
	ListByTA(ctx context.Context, taEmail string) ([]models.SwapRequest, error)
}

type assignmentMutator interface {
	FindByID(ctx context.Context, id string) (*models.ProctoringAssignment, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ProctoringAssignment, error)
	UpdateTA(ctx context.Context, exec sqlx.ExtContext, id, newEmail string) error
}

type taAccount interface {
	FindByEmail(ctx context.Context, email string) (*models.TA, error)
	AdjustWorkload(ctx context.Context, exec sqlx.ExtContext, email string, deltaHours int) error
}

// SwapService runs the post-assignment reassignment workflow: a proctor asks
// another TA to take over one duty, the target accepts or rejects, and on
// acceptance the assignment and both workloads move in one transaction.
type SwapService struct {
	db            txProvider
	swaps         swapStore
	assignments   assignmentMutator
	exams         examSource
	tas           taAccount
	pool          *PoolService
	eligibility   *EligibilityService
	notifications *NotificationService
	cache         *CacheService
	logger        *zap.Logger
}

// NewSwapService constructs a SwapService.
func NewSwapService(
	db txProvider,
	swaps swapStore,
	assignments assignmentMutator,
	exams examSource,
	tas taAccount,
	pool *PoolService,
	eligibility *EligibilityService,
	notifications *NotificationService,
	cache *CacheService,
	logger *zap.Logger,
) *SwapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwapService{
		db:            db,
		swaps:         swaps,
		assignments:   assignments,
		exams:         exams,
		tas:           tas,
		pool:          pool,
		eligibility:   eligibility,
		notifications: notifications,
		cache:         cache,
		logger:        logger,
	}
}

// Candidates lists TAs the assignment holder may ask to take over, annotated
// with the exclusion reasons that apply, sorted by workload ascending. The
// holder decides whether an annotated TA is still worth asking; only the
// holder themselves is omitted.
func (s *SwapService) Candidates(ctx context.Context, assignmentID string) ([]models.CandidateView, error) {
	assignment, exam, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	snap, err := s.eligibility.Snapshot(ctx, *exam)
	if err != nil {
		return nil, err
	}

	pool, err := s.pool.Build(ctx, snap, !exam.Dean)
	if err != nil {
		return nil, err
	}

	views := make([]models.CandidateView, 0, len(pool))
	for _, ta := range pool {
		if strings.EqualFold(ta.Email, assignment.TAEmail) {
			continue
		}
		views = append(views, models.CandidateView{
			Email:    ta.Email,
			Name:     ta.FullName,
			Workload: ta.Workload,
			Program:  ta.Program,
			Reasons:  snap.Reasons(ta),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Workload != views[j].Workload {
			return views[i].Workload < views[j].Workload
		}
		return views[i].Email < views[j].Email
	})
	return views, nil
}

// Create opens a pending swap request from the assignment holder to another
// TA. One pending request per assignment at a time.
func (s *SwapService) Create(ctx context.Context, assignmentID, requestedBy, requestedTo string) (*models.SwapRequest, error) {
	assignment, exam, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(assignment.TAEmail, requestedBy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned TA can request a swap")
	}
	if strings.EqualFold(requestedBy, requestedTo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot request a swap with yourself")
	}

	target, err := s.tas.FindByEmail(ctx, requestedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target TA not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target TA")
	}
	if !target.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "target TA is inactive")
	}

	pending, err := s.swaps.ExistsPendingForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending swaps")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, string(models.ReasonPendingSwap))
	}

	swap := &models.SwapRequest{
		AssignmentID: assignmentID,
		RequestedBy:  assignment.TAEmail,
		RequestedTo:  target.Email,
	}
	if err := s.swaps.Create(ctx, swap); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create swap request")
	}

	s.notifications.Notify(target.Email, "%s asked you to take over proctoring %s on %s",
		assignment.TAEmail, exam.PrimaryCourse(), exam.Date.Format("2006-01-02"))
	s.logger.Info("swap requested",
		zap.String("swap_id", swap.ID),
		zap.String("assignment_id", assignmentID),
		zap.String("from", swap.RequestedBy),
		zap.String("to", swap.RequestedTo))
	return swap, nil
}

// Respond settles a pending swap. On acceptance the assignment moves to the
// target and the exam's duration moves between the two workloads, all inside
// one transaction holding locks on both the swap and the assignment.
func (s *SwapService) Respond(ctx context.Context, swapID, actor string, accept bool) (swap *models.SwapRequest, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin swap response")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	swap, err = s.swaps.LockByID(ctx, tx, swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock swap request")
	}
	if swap.Status != models.SwapStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request already settled")
	}
	if !strings.EqualFold(swap.RequestedTo, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requested TA can respond")
	}

	status := models.SwapStatusRejected
	if accept {
		status = models.SwapStatusAccepted

		var assignment *models.ProctoringAssignment
		if assignment, err = s.assignments.LockByID(ctx, tx, swap.AssignmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assignment no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock assignment")
		}

		var exam *models.Exam
		if exam, err = s.exams.FindByID(ctx, assignment.ExamID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
		}
		duration := exam.DurationHours()

		if err = s.assignments.UpdateTA(ctx, tx, assignment.ID, swap.RequestedTo); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign")
		}
		if err = s.tas.AdjustWorkload(ctx, tx, assignment.TAEmail, -duration); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release workload")
		}
		if err = s.tas.AdjustWorkload(ctx, tx, swap.RequestedTo, duration); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit workload")
		}
	}

	if err = s.swaps.UpdateStatus(ctx, tx, swap.ID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update swap status")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit swap response")
	}
	swap.Status = status

	verb := "rejected"
	if accept {
		verb = "accepted"
		_ = s.cache.Invalidate(ctx, "proctoring:*")
		_ = s.cache.Invalidate(ctx, "assignments:*")
	}
	s.notifications.Notify(swap.RequestedBy, "%s %s your swap request", swap.RequestedTo, verb)
	s.logger.Info("swap settled",
		zap.String("swap_id", swap.ID),
		zap.String("status", status))
	return swap, nil
}

// Cancel withdraws a pending swap request. Only the requester can cancel.
func (s *SwapService) Cancel(ctx context.Context, swapID, actor string) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin swap cancel")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	swap, err := s.swaps.LockByID(ctx, tx, swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock swap request")
	}
	if swap.Status != models.SwapStatusPending {
		return appErrors.Clone(appErrors.ErrConflict, "swap request already settled")
	}
	if !strings.EqualFold(swap.RequestedBy, actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the requester can cancel")
	}

	if err = s.swaps.UpdateStatus(ctx, tx, swap.ID, models.SwapStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel swap")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit swap cancel")
	}

	s.notifications.Notify(swap.RequestedTo, "%s withdrew their swap request", swap.RequestedBy)
	return nil
}

// StaffReassign moves an assignment to a new TA directly, bypassing the
// request/response handshake. Workload moves the same way an accepted swap
// moves it.
func (s *SwapService) StaffReassign(ctx context.Context, assignmentID, newEmail string) (err error) {
	target, err := s.tas.FindByEmail(ctx, newEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "target TA not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target TA")
	}
	if !target.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "target TA is inactive")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin reassignment")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	assignment, err := s.assignments.LockByID(ctx, tx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock assignment")
	}
	if strings.EqualFold(assignment.TAEmail, target.Email) {
		return appErrors.Clone(appErrors.ErrValidation, "assignment already belongs to that TA")
	}

	exam, err := s.exams.FindByID(ctx, assignment.ExamID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	duration := exam.DurationHours()

	if err = s.assignments.UpdateTA(ctx, tx, assignment.ID, target.Email); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign")
	}
	if err = s.tas.AdjustWorkload(ctx, tx, assignment.TAEmail, -duration); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release workload")
	}
	if err = s.tas.AdjustWorkload(ctx, tx, target.Email, duration); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit workload")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit reassignment")
	}

	_ = s.cache.Invalidate(ctx, "proctoring:*")
	_ = s.cache.Invalidate(ctx, "assignments:*")
	s.notifications.Notify(assignment.TAEmail, "your proctoring duty for %s was reassigned", exam.PrimaryCourse())
	s.notifications.Notify(target.Email, "you were assigned to proctor %s on %s",
		exam.PrimaryCourse(), exam.Date.Format("2006-01-02"))
	return nil
}

// ListForTA returns swaps the TA sent or received, newest first.
func (s *SwapService) ListForTA(ctx context.Context, taEmail string) ([]models.SwapRequest, error) {
	swaps, err := s.swaps.ListByTA(ctx, taEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list swaps")
	}
	return swaps, nil
}

func (s *SwapService) loadAssignment(ctx context.Context, assignmentID string) (*models.ProctoringAssignment, *models.Exam, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	exam, err := s.exams.FindByID(ctx, assignment.ExamID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return assignment, exam, nil
}
