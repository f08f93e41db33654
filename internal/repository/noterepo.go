package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/skribb-ai/backend/internal/model"
)

// NoteRepository provides persistence for user-owned notes.
type NoteRepository interface {
	// ListByUser returns all notes owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Note, error)
	// Create inserts a new note.
	Create(ctx context.Context, n *model.Note) error
	// Get loads a note by ID regardless of owner; callers enforce ownership.
	Get(ctx context.Context, id uuid.UUID) (*model.Note, error)
	// Update applies the non-nil fields of upd to the note.
	Update(ctx context.Context, id uuid.UUID, upd model.NoteUpdate) (*model.Note, error)
	// Delete removes a note by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
