package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/skribb-ai/backend/internal/errs"
	"github.com/skribb-ai/backend/internal/model"
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

const noteCols = `id, user_id, title, content, note_type, status, created_at, updated_at`

// ListByUser returns the user's notes, newest first.
func (r *NoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Note, error) {
	const q = `SELECT ` + noteCols + ` FROM notes WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Type, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Create inserts a new note row.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (id, user_id, title, content, note_type, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, n.ID, n.UserID, n.Title, n.Content, n.Type, n.Status).
		Scan(&n.CreatedAt, &n.UpdatedAt)
}

// Get selects a note by ID.
func (r *NoteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	const q = `SELECT ` + noteCols + ` FROM notes WHERE id=$1`
	var n model.Note
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Type, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &n, nil
}

// Update applies the non-nil fields of upd and returns the updated row.
// id and user_id are never part of the SET list.
func (r *NoteRepo) Update(ctx context.Context, id uuid.UUID, upd model.NoteUpdate) (*model.Note, error) {
	const q = `
UPDATE notes SET
  title     = COALESCE($2, title),
  content   = COALESCE($3, content),
  note_type = COALESCE($4, note_type),
  status    = COALESCE($5, status),
  updated_at = now()
WHERE id=$1
RETURNING ` + noteCols
	var n model.Note
	err := r.db.Pool.QueryRow(ctx, q, id, upd.Title, upd.Content, upd.Type, upd.Status).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Type, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Delete removes a note row.
func (r *NoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM notes WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
