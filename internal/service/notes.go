package service

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
	"github.com/notehub-app/notehub/internal/repository"
)

// NoteService defines ownership-scoped operations over notes and plans. Every
// method takes the resolved owner ID; plan operations resolve the parent note
// through the ownership rule before touching any plan.
type NoteService interface {
	ListNotes(ctx context.Context, ownerID int64) ([]model.Note, error)
	CreateNote(ctx context.Context, ownerID int64, title string, content *string) (*model.Note, error)
	GetNote(ctx context.Context, ownerID, noteID int64) (*model.NoteWithPlans, error)
	UpdateNote(ctx context.Context, ownerID, noteID int64, patch model.NotePatch) (*model.Note, error)
	DeleteNote(ctx context.Context, ownerID, noteID int64) error

	ListPlans(ctx context.Context, ownerID, noteID int64) ([]model.Plan, error)
	CreatePlan(ctx context.Context, ownerID, noteID int64, title string, isDone bool) (*model.Plan, error)
	GetPlan(ctx context.Context, ownerID, noteID, planID int64) (*model.Plan, error)
	UpdatePlan(ctx context.Context, ownerID, noteID, planID int64, patch model.PlanPatch) (*model.Plan, error)
	DeletePlan(ctx context.Context, ownerID, noteID, planID int64) error
}

type NoteServiceImpl struct {
	notes repository.NoteRepository
	plans repository.PlanRepository
}

// NewNoteService constructs NoteService over the two repositories.
func NewNoteService(notes repository.NoteRepository, plans repository.PlanRepository) *NoteServiceImpl {
	return &NoteServiceImpl{notes: notes, plans: plans}
}

// ListNotes returns the owner's notes; an empty slice when there are none.
func (s *NoteServiceImpl) ListNotes(ctx context.Context, ownerID int64) ([]model.Note, error) {
	return s.notes.ListByOwner(ctx, ownerID)
}

// CreateNote inserts a note for the owner.
func (s *NoteServiceImpl) CreateNote(ctx context.Context, ownerID int64, title string, content *string) (*model.Note, error) {
	return s.notes.Create(ctx, ownerID, title, content)
}

// GetNote returns the note with its plans, or errs.ErrNotFound when it does
// not exist or belongs to someone else.
func (s *NoteServiceImpl) GetNote(ctx context.Context, ownerID, noteID int64) (*model.NoteWithPlans, error) {
	n, err := s.notes.Get(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByNote(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return &model.NoteWithPlans{Note: *n, Plans: plans}, nil
}

// UpdateNote applies a partial update under the ownership rule.
func (s *NoteServiceImpl) UpdateNote(ctx context.Context, ownerID, noteID int64, patch model.NotePatch) (*model.Note, error) {
	return s.notes.Update(ctx, ownerID, noteID, patch)
}

// DeleteNote removes the note and all its plans atomically.
func (s *NoteServiceImpl) DeleteNote(ctx context.Context, ownerID, noteID int64) error {
	return s.notes.Delete(ctx, ownerID, noteID)
}

// resolveNote applies the ownership rule for plan operations. The returned
// note ID is what subsequent plan predicates pair against.
func (s *NoteServiceImpl) resolveNote(ctx context.Context, ownerID, noteID int64) (*model.Note, error) {
	return s.notes.Get(ctx, ownerID, noteID)
}

// ListPlans resolves the note first, then lists its plans in insertion order.
func (s *NoteServiceImpl) ListPlans(ctx context.Context, ownerID, noteID int64) ([]model.Plan, error) {
	n, err := s.resolveNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	return s.plans.ListByNote(ctx, n.ID)
}

// CreatePlan resolves the note first, then creates the plan under it.
func (s *NoteServiceImpl) CreatePlan(ctx context.Context, ownerID, noteID int64, title string, isDone bool) (*model.Plan, error) {
	n, err := s.resolveNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	return s.plans.Create(ctx, n.ID, title, isDone)
}

// GetPlan returns the plan only when it belongs to the specified note and the
// note belongs to the owner.
func (s *NoteServiceImpl) GetPlan(ctx context.Context, ownerID, noteID, planID int64) (*model.Plan, error) {
	n, err := s.resolveNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	return s.plans.Get(ctx, n.ID, planID)
}

// UpdatePlan applies a partial update under the full ownership chain.
func (s *NoteServiceImpl) UpdatePlan(ctx context.Context, ownerID, noteID, planID int64, patch model.PlanPatch) (*model.Plan, error) {
	n, err := s.resolveNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	return s.plans.Update(ctx, n.ID, planID, patch)
}

// DeletePlan removes the plan under the full ownership chain.
func (s *NoteServiceImpl) DeletePlan(ctx context.Context, ownerID, noteID, planID int64) error {
	n, err := s.resolveNote(ctx, ownerID, noteID)
	if err != nil {
		return err
	}
	return s.plans.Delete(ctx, n.ID, planID)
}
