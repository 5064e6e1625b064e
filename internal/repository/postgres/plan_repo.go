package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
)

// PlanRepo implements PlanRepository using PostgreSQL. Predicates always pair
// the plan ID with its parent note ID; a plan addressed under a different
// note, even one with the same owner, scans as no rows.
type PlanRepo struct{ db *DB }

// NewPlanRepo constructs a plan repository.
func NewPlanRepo(db *DB) *PlanRepo { return &PlanRepo{db: db} }

const planColumns = `id, note_id, title, is_done, created_at`

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var p model.Plan
	err := row.Scan(&p.ID, &p.NoteID, &p.Title, &p.IsDone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByNote returns the note's plans in insertion order. The ID tie-breaker
// keeps the order deterministic for rows created within one timestamp tick.
func (r *PlanRepo) ListByNote(ctx context.Context, noteID int64) ([]model.Plan, error) {
	const q = `
SELECT ` + planColumns + `
FROM plans WHERE note_id=$1 ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, q, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Plan{}
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.NoteID, &p.Title, &p.IsDone, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns the plan only if it belongs to noteID.
func (r *PlanRepo) Get(ctx context.Context, noteID, planID int64) (*model.Plan, error) {
	const q = `
SELECT ` + planColumns + `
FROM plans WHERE id=$1 AND note_id=$2`
	return scanPlan(r.db.Pool.QueryRow(ctx, q, planID, noteID))
}

// Create inserts a plan under noteID.
func (r *PlanRepo) Create(ctx context.Context, noteID int64, title string, isDone bool) (*model.Plan, error) {
	const q = `
INSERT INTO plans (note_id, title, is_done)
VALUES ($1, $2, $3)
RETURNING ` + planColumns
	return scanPlan(r.db.Pool.QueryRow(ctx, q, noteID, title, isDone))
}

// Update applies the non-nil patch fields. created_at is untouched, so the
// listing position never changes.
func (r *PlanRepo) Update(ctx context.Context, noteID, planID int64, patch model.PlanPatch) (*model.Plan, error) {
	const q = `
UPDATE plans
SET title=COALESCE($3, title), is_done=COALESCE($4, is_done)
WHERE id=$1 AND note_id=$2
RETURNING ` + planColumns
	return scanPlan(r.db.Pool.QueryRow(ctx, q, planID, noteID, patch.Title, patch.IsDone))
}

// Delete removes the plan.
func (r *PlanRepo) Delete(ctx context.Context, noteID, planID int64) error {
	const q = `DELETE FROM plans WHERE id=$1 AND note_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, planID, noteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
