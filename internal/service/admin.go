package service

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
	"github.com/notehub-app/notehub/internal/repository"
)

// AdminService defines the unscoped listings behind the admin-only routes.
// Callers must pass AuthService.AuthorizeAdmin first; these methods do not
// re-check the flag themselves.
type AdminService interface {
	// ListUsers returns all accounts.
	ListUsers(ctx context.Context) ([]model.User, error)
	// ListNotes returns every note from every user, with plans attached.
	ListNotes(ctx context.Context) ([]model.NoteWithPlans, error)
	// ListUserNotes returns one user's notes, with plans attached.
	ListUserNotes(ctx context.Context, userID int64) ([]model.NoteWithPlans, error)
}

type AdminServiceImpl struct {
	users repository.UserRepository
	notes repository.NoteRepository
	plans repository.PlanRepository
}

// NewAdminService constructs AdminService over the three repositories.
func NewAdminService(users repository.UserRepository, notes repository.NoteRepository, plans repository.PlanRepository) *AdminServiceImpl {
	return &AdminServiceImpl{users: users, notes: notes, plans: plans}
}

// ListUsers returns all accounts ordered by ID.
func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ListNotes returns every note with its plans.
func (s *AdminServiceImpl) ListNotes(ctx context.Context) ([]model.NoteWithPlans, error) {
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachPlans(ctx, notes)
}

// ListUserNotes returns the given user's notes with their plans.
func (s *AdminServiceImpl) ListUserNotes(ctx context.Context, userID int64) ([]model.NoteWithPlans, error) {
	notes, err := s.notes.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachPlans(ctx, notes)
}

func (s *AdminServiceImpl) attachPlans(ctx context.Context, notes []model.Note) ([]model.NoteWithPlans, error) {
	out := make([]model.NoteWithPlans, 0, len(notes))
	for _, n := range notes {
		plans, err := s.plans.ListByNote(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.NoteWithPlans{Note: n, Plans: plans})
	}
	return out, nil
}
