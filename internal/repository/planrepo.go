package repository

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
)

// PlanRepository provides access to plans scoped by their parent note. The
// caller is responsible for resolving the note through NoteRepository.Get
// first; these methods only pair the plan ID with the given note ID, so a
// valid plan addressed under the wrong note is errs.ErrNotFound.
type PlanRepository interface {
	// ListByNote returns the note's plans in insertion order
	// (created_at ascending, ID as tie-breaker).
	ListByNote(ctx context.Context, noteID int64) ([]model.Plan, error)
	// Get returns the plan only if it belongs to noteID.
	Get(ctx context.Context, noteID, planID int64) (*model.Plan, error)
	// Create inserts a plan under noteID and fills in ID and created_at.
	Create(ctx context.Context, noteID int64, title string, isDone bool) (*model.Plan, error)
	// Update applies the non-nil patch fields. Updates never reorder listings.
	Update(ctx context.Context, noteID, planID int64, patch model.PlanPatch) (*model.Plan, error)
	// Delete removes the plan.
	Delete(ctx context.Context, noteID, planID int64) error
}
