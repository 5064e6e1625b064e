package repository

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
)

// NoteRepository provides ownership-scoped access to notes. Every lookup and
// mutation conjoins the note ID with the owner ID; an existing note owned by
// someone else is indistinguishable from a missing one (errs.ErrNotFound).
type NoteRepository interface {
	// ListByOwner returns all notes owned by ownerID, ordered by ID.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Note, error)
	// Get returns the note only if it exists and belongs to ownerID.
	Get(ctx context.Context, ownerID, noteID int64) (*model.Note, error)
	// Create inserts a note for ownerID and fills in ID and timestamps.
	Create(ctx context.Context, ownerID int64, title string, content *string) (*model.Note, error)
	// Update applies the non-nil patch fields and bumps updated_at.
	Update(ctx context.Context, ownerID, noteID int64, patch model.NotePatch) (*model.Note, error)
	// Delete removes the note and all its plans in one transaction.
	Delete(ctx context.Context, ownerID, noteID int64) error
	// ListAll returns every note regardless of owner, ordered by ID. Admin use only.
	ListAll(ctx context.Context) ([]model.Note, error)
}
