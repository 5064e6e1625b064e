// Package model defines domain entities used by services and repositories.
package model

import "time"

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics and the client cache)
}

// User represents an account. PasswordHash is a bcrypt hash, never the password.
type User struct {
	ID           int64
	Username     string // unique, 3..50 chars
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Note is a top-level record owned by exactly one user.
// OwnerID never changes after creation.
type Note struct {
	ID        int64
	OwnerID   int64 // FK -> users.id
	Title     string
	Content   *string // nil when the note has no content
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan is a checklist entry nested under a note. NoteID never changes after
// creation; plans are always listed in insertion order.
type Plan struct {
	ID        int64
	NoteID    int64 // FK -> notes.id
	Title     string
	IsDone    bool
	CreatedAt time.Time
}

// NoteWithPlans is a note together with its plans in insertion order, as
// returned by the detailed note view and the admin listings.
type NoteWithPlans struct {
	Note
	Plans []Plan
}

// NotePatch is a partial update: nil fields are left unchanged. There is no
// way to clear content back to NULL; absent means "keep".
type NotePatch struct {
	Title   *string
	Content *string
}

// PlanPatch is a partial update for a plan; nil fields are left unchanged.
type PlanPatch struct {
	Title  *string
	IsDone *bool
}

// IsZero reports whether the patch would change nothing.
func (p NotePatch) IsZero() bool { return p.Title == nil && p.Content == nil }

// IsZero reports whether the patch would change nothing.
func (p PlanPatch) IsZero() bool { return p.Title == nil && p.IsDone == nil }
