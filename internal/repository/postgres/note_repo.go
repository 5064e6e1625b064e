package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
)

// NoteRepo implements NoteRepository using PostgreSQL. Every predicate pairs
// the note ID with the owner ID, so wrong-owner access scans as no rows.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

const noteColumns = `id, owner_id, title, content, created_at, updated_at`

func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListByOwner returns all notes owned by ownerID, ordered by ID.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes WHERE owner_id=$1 ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

// ListAll returns every note regardless of owner, ordered by ID.
func (r *NoteRepo) ListAll(ctx context.Context) ([]model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

func collectNotes(rows pgx.Rows) ([]model.Note, error) {
	out := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Get returns the note only if it exists and belongs to ownerID.
func (r *NoteRepo) Get(ctx context.Context, ownerID, noteID int64) (*model.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes WHERE id=$1 AND owner_id=$2`
	return scanNote(r.db.Pool.QueryRow(ctx, q, noteID, ownerID))
}

// Create inserts a note for ownerID.
func (r *NoteRepo) Create(ctx context.Context, ownerID int64, title string, content *string) (*model.Note, error) {
	const q = `
INSERT INTO notes (owner_id, title, content)
VALUES ($1, $2, $3)
RETURNING ` + noteColumns
	return scanNote(r.db.Pool.QueryRow(ctx, q, ownerID, title, content))
}

// Update applies the non-nil patch fields and bumps updated_at. NULL arguments
// collapse to the current column value, which is what makes the update partial.
func (r *NoteRepo) Update(ctx context.Context, ownerID, noteID int64, patch model.NotePatch) (*model.Note, error) {
	const q = `
UPDATE notes
SET title=COALESCE($3, title), content=COALESCE($4, content), updated_at=now()
WHERE id=$1 AND owner_id=$2
RETURNING ` + noteColumns
	return scanNote(r.db.Pool.QueryRow(ctx, q, noteID, ownerID, patch.Title, patch.Content))
}

// Delete removes the note and all its plans in a single transaction. The
// initial locked select both enforces ownership and serializes with
// concurrent plan writes under the same note.
func (r *NoteRepo) Delete(ctx context.Context, ownerID, noteID int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `SELECT id FROM notes WHERE id=$1 AND owner_id=$2 FOR UPDATE`
	const delPlans = `DELETE FROM plans WHERE note_id=$1`
	const delNote = `DELETE FROM notes WHERE id=$1`

	var id int64
	if err = tx.QueryRow(ctx, sel, noteID, ownerID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err = tx.Exec(ctx, delPlans, noteID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, delNote, noteID); err != nil {
		return err
	}
	return nil
}
