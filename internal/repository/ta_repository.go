package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// TARepository manages persistence for teaching assistants.
type TARepository struct {
	db *sqlx.DB
}

// NewTARepository constructs a TARepository.
func NewTARepository(db *sqlx.DB) *TARepository {
	return &TARepository{db: db}
}

const taColumns = "id, email, full_name, advisor, program, workload, active, created_at, updated_at"

// List returns TAs matching filters along with total count.
func (r *TARepository) List(ctx context.Context, filter models.TAFilter) ([]models.TA, int, error) {
	base := "FROM tas WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "workload"
	}
	allowedSorts := map[string]string{
		"full_name": "full_name",
		"email":     "email",
		"workload":  "workload",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "workload"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", taColumns, base, column, order, size, offset)
	var tas []models.TA
	if err := r.db.SelectContext(ctx, &tas, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tas: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tas: %w", err)
	}

	return tas, total, nil
}

// ListActive returns every active TA, ordered by email for stable iteration.
func (r *TARepository) ListActive(ctx context.Context) ([]models.TA, error) {
	query := fmt.Sprintf("SELECT %s FROM tas WHERE active = TRUE ORDER BY email", taColumns)
	var tas []models.TA
	if err := r.db.SelectContext(ctx, &tas, query); err != nil {
		return nil, fmt.Errorf("list active tas: %w", err)
	}
	return tas, nil
}

// FindByEmail fetches a TA by email.
func (r *TARepository) FindByEmail(ctx context.Context, email string) (*models.TA, error) {
	query := fmt.Sprintf("SELECT %s FROM tas WHERE LOWER(email) = LOWER($1)", taColumns)
	var ta models.TA
	if err := r.db.GetContext(ctx, &ta, query, email); err != nil {
		return nil, err
	}
	return &ta, nil
}

// Create inserts a new TA record.
func (r *TARepository) Create(ctx context.Context, ta *models.TA) error {
	if ta.ID == "" {
		ta.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ta.CreatedAt.IsZero() {
		ta.CreatedAt = now
	}
	ta.UpdatedAt = now

	const query = `INSERT INTO tas (id, email, full_name, advisor, program, workload, active, created_at, updated_at)
		VALUES (:id, :email, :full_name, :advisor, :program, :workload, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ta); err != nil {
		return fmt.Errorf("create ta: %w", err)
	}
	return nil
}

// AdjustWorkload applies a signed hour delta to a TA's workload atomically.
// The result is floored at zero so compensating decrements can never drive
// workload negative. Runs on the provided executor so callers can place it
// inside a transaction.
func (r *TARepository) AdjustWorkload(ctx context.Context, exec sqlx.ExtContext, email string, deltaHours int) error {
	const query = `UPDATE tas SET workload = GREATEST(workload + $2, 0), updated_at = $3 WHERE email = $1`
	res, err := exec.ExecContext(ctx, query, email, deltaHours, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust workload for %s: %w", email, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("adjust workload for %s: no such ta", email)
	}
	return nil
}

// ExistActiveByEmails verifies every email belongs to an active TA, returning
// the missing ones.
func (r *TARepository) ExistActiveByEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT email FROM tas WHERE active = TRUE AND email IN (?)", emails)
	if err != nil {
		return nil, fmt.Errorf("build ta existence query: %w", err)
	}
	query = r.db.Rebind(query)
	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("check ta existence: %w", err)
	}

	known := make(map[string]bool, len(found))
	for _, email := range found {
		known[email] = true
	}
	var missing []string
	for _, email := range emails {
		if !known[email] {
			missing = append(missing, email)
		}
	}
	return missing, nil
}
