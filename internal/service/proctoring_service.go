package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	"github.com/campus-ops/ta-proctoring-api/internal/solver"
	"github.com/campus-ops/ta-proctoring-api/pkg/config"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type examSource interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

// OverrideFlags records which constraints the ladder relaxed to reach a
// result. All false means the strict solve succeeded.
type OverrideFlags struct {
	Consec bool `json:"consec"`
	MS     bool `json:"ms"`
	Dept   bool `json:"dept"`
}

// AssignmentProposal is the ladder's output: the chosen TAs, how far the
// ladder had to relax, and whether the required proctor count was met.
// Callers must treat Feasible == false as failure even when TAEmails is
// non-empty; a short list is offered for manual completion only.
type AssignmentProposal struct {
	ExamID   string        `json:"exam_id"`
	TAEmails []string      `json:"ta_emails"`
	Flags    OverrideFlags `json:"overrides"`
	Cost     int64         `json:"cost"`
	Feasible bool          `json:"feasible"`
}

type ladderStage struct {
	name          string
	relaxAdjacent bool
	relaxProgram  bool
	restrictDept  bool
	flags         OverrideFlags
}

// The four stages are fixed and cumulative. Later stages are attempted only
// after an earlier stage came up short, so the flags on a result always name
// the minimal relaxation that produced it.
var ladder = []ladderStage{
	{name: "strict", restrictDept: true},
	{name: "relax_adjacent", relaxAdjacent: true, restrictDept: true, flags: OverrideFlags{Consec: true}},
	{name: "relax_program", relaxAdjacent: true, relaxProgram: true, restrictDept: true, flags: OverrideFlags{Consec: true, MS: true}},
	{name: "full_pool", relaxAdjacent: true, relaxProgram: true, flags: OverrideFlags{Consec: true, MS: true, Dept: true}},
}

// ProctoringService orchestrates eligibility snapshots, pool building, and
// solver runs into the override ladder.
type ProctoringService struct {
	exams       examSource
	pool        *PoolService
	eligibility *EligibilityService
	cache       *CacheService
	metrics     *MetricsService
	cfg         config.ProctoringConfig
	logger      *zap.Logger
}

// NewProctoringService constructs a ProctoringService.
func NewProctoringService(
	exams examSource,
	pool *PoolService,
	eligibility *EligibilityService,
	cache *CacheService,
	metrics *MetricsService,
	cfg config.ProctoringConfig,
	logger *zap.Logger,
) *ProctoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProctoringService{
		exams:       exams,
		pool:        pool,
		eligibility: eligibility,
		cache:       cache,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// AssignWithOverrides runs the override ladder for the exam and returns the
// best proposal it can produce. Infeasibility is not an error: the proposal
// comes back with Feasible false, a possibly short TA list, and all flags set.
func (s *ProctoringService) AssignWithOverrides(ctx context.Context, examID string) (*AssignmentProposal, error) {
	if s.cfg.SolveBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SolveBudget)
		defer cancel()
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	snap, err := s.eligibility.Snapshot(ctx, *exam)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		s.metrics.ObserveLadderRun(time.Since(started))
	}()

	var last *AssignmentProposal
	for _, stage := range ladder {
		pool, err := s.pool.Build(ctx, snap, stage.restrictDept)
		if err != nil {
			return nil, err
		}

		solution, admissible := s.solveStage(snap, pool, exam.NumProctors, stage)
		s.metrics.RecordSolve(stage.name, solution.Feasible)

		if solution.Feasible {
			s.logger.Info("proctor assignment solved",
				zap.String("exam_id", exam.ID),
				zap.String("stage", stage.name),
				zap.Int("proctors", len(solution.Chosen)),
				zap.Int64("cost", solution.Cost))
			return &AssignmentProposal{
				ExamID:   exam.ID,
				TAEmails: solution.Chosen,
				Flags:    stage.flags,
				Cost:     solution.Cost,
				Feasible: true,
			}, nil
		}

		// The final stage returns whatever it found, even short of the
		// required count, so a human can complete the list by hand.
		last = &AssignmentProposal{
			ExamID:   exam.ID,
			TAEmails: admissible,
			Flags:    stage.flags,
			Feasible: false,
		}
	}

	s.logger.Warn("override ladder exhausted",
		zap.String("exam_id", exam.ID),
		zap.Int("required", exam.NumProctors),
		zap.Int("found", len(last.TAEmails)))
	return last, nil
}

// solveStage builds a fresh model for one ladder stage and solves it. The
// model is never reused across stages. It also returns the stage's admissible
// TAs, cheapest first, for partial results on exhaustion.
func (s *ProctoringService) solveStage(snap *EligibilitySnapshot, pool []models.TA, required int, stage ladderStage) (solver.Solution, []string) {
	model := solver.NewModel(required)
	admissibleCount := 0
	for _, ta := range pool {
		model.AddVar(ta.Email, snap.Cost(ta))
		switch {
		case snap.HardExcluded(ta):
			model.Forbid(ta.Email)
		case !stage.relaxAdjacent && snap.Adjacent[ta.Email]:
			model.Forbid(ta.Email)
		case !stage.relaxProgram && snap.ProgramRestricted() && ta.Program != models.ProgramPhD:
			model.Forbid(ta.Email)
		default:
			admissibleCount++
		}
	}

	solution := model.Solve()
	if solution.Feasible {
		return solution, solution.Chosen
	}

	if admissibleCount == 0 {
		return solution, nil
	}
	partial := solver.NewModel(admissibleCount)
	for _, ta := range pool {
		partial.AddVar(ta.Email, snap.Cost(ta))
		if model.Forbidden(ta.Email) {
			partial.Forbid(ta.Email)
		}
	}
	return solution, partial.Solve().Chosen
}

// ListCandidates returns the full active roster annotated with the exclusion
// reasons that apply to the exam, sorted by workload. Results are cached
// briefly; confirmation invalidates them.
func (s *ProctoringService) ListCandidates(ctx context.Context, examID string) ([]models.CandidateView, error) {
	cacheKey := candidateCacheKey(examID)
	var cached []models.CandidateView
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	snap, err := s.eligibility.Snapshot(ctx, *exam)
	if err != nil {
		return nil, err
	}

	pool, err := s.pool.Build(ctx, snap, false)
	if err != nil {
		return nil, err
	}

	views := make([]models.CandidateView, 0, len(pool))
	for _, ta := range pool {
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

	_ = s.cache.Set(ctx, cacheKey, views, s.cfg.CandidateTTL)
	return views, nil
}

func candidateCacheKey(examID string) string {
	return fmt.Sprintf("proctoring:candidates:%s", examID)
}
