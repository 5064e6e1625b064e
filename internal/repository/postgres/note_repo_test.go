package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
)

const noteCols = `id, owner_id, title, content, created_at, updated_at`

func noteRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "owner_id", "title", "content", "created_at", "updated_at"})
}

func strPtr(s string) *string { return &s }

func TestNoteRepo_Get_ScopedToOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT `+noteCols+` FROM notes WHERE id=\$1 AND owner_id=\$2`).
		WithArgs(int64(10), int64(1)).
		WillReturnRows(noteRows().AddRow(int64(10), int64(1), "t", strPtr("c"), now, now))
	n, err := r.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), n.ID)
	require.Equal(t, int64(1), n.OwnerID)

	// Same note id, different owner: the predicate matches no rows, so the
	// outcome is identical to a nonexistent note.
	mock.ExpectQuery(`SELECT `+noteCols+` FROM notes WHERE id=\$1 AND owner_id=\$2`).
		WithArgs(int64(10), int64(2)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, 2, 10)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNoteRepo_ListByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT `+noteCols+` FROM notes WHERE owner_id=\$1 ORDER BY id`).
		WithArgs(int64(1)).
		WillReturnRows(noteRows().
			AddRow(int64(10), int64(1), "a", nil, now, now).
			AddRow(int64(11), int64(1), "b", strPtr("x"), now, now))
	notes, err := r.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Nil(t, notes[0].Content)

	// No notes is an empty slice, not nil.
	mock.ExpectQuery(`SELECT `+noteCols+` FROM notes WHERE owner_id=\$1 ORDER BY id`).
		WithArgs(int64(2)).
		WillReturnRows(noteRows())
	notes, err = r.ListByOwner(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, notes)
	require.Empty(t, notes)
}

func TestNoteRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO notes \(owner_id, title, content\) VALUES \(\$1, \$2, \$3\) RETURNING `+noteCols).
		WithArgs(int64(1), "shopping", strPtr("milk")).
		WillReturnRows(noteRows().AddRow(int64(42), int64(1), "shopping", strPtr("milk"), now, now))
	n, err := r.Create(ctx, 1, "shopping", strPtr("milk"))
	require.NoError(t, err)
	require.Equal(t, int64(42), n.ID)
}

func TestNoteRepo_Update_PartialAndScoped(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()
	now := time.Now()

	// Only the title is set; content stays NULL in the patch and COALESCEs to
	// the current value.
	mock.ExpectQuery(`UPDATE notes SET title=COALESCE\(\$3, title\), content=COALESCE\(\$4, content\), updated_at=now\(\) WHERE id=\$1 AND owner_id=\$2 RETURNING `+noteCols).
		WithArgs(int64(10), int64(1), strPtr("new"), (*string)(nil)).
		WillReturnRows(noteRows().AddRow(int64(10), int64(1), "new", strPtr("old content"), now, now))
	n, err := r.Update(ctx, 1, 10, model.NotePatch{Title: strPtr("new")})
	require.NoError(t, err)
	require.Equal(t, "new", n.Title)
	require.Equal(t, "old content", *n.Content)

	// Wrong owner: not found.
	mock.ExpectQuery(`UPDATE notes SET title=COALESCE\(\$3, title\), content=COALESCE\(\$4, content\), updated_at=now\(\) WHERE id=\$1 AND owner_id=\$2 RETURNING `+noteCols).
		WithArgs(int64(10), int64(2), strPtr("new"), (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Update(ctx, 2, 10, model.NotePatch{Title: strPtr("new")})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNoteRepo_Delete_CascadesInOneTx(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM notes WHERE id=\$1 AND owner_id=\$2 FOR UPDATE`).
		WithArgs(int64(10), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(`DELETE FROM plans WHERE note_id=\$1`).
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM notes WHERE id=\$1`).
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(ctx, 1, 10))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepo_Delete_WrongOwnerRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM notes WHERE id=\$1 AND owner_id=\$2 FOR UPDATE`).
		WithArgs(int64(10), int64(2)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	require.ErrorIs(t, r.Delete(ctx, 2, 10), errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepo_ListAll(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT ` + noteCols + ` FROM notes ORDER BY id`).
		WillReturnRows(noteRows().
			AddRow(int64(1), int64(1), "a", nil, now, now).
			AddRow(int64(2), int64(2), "b", nil, now, now))
	notes, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, int64(2), notes[1].OwnerID)
}
