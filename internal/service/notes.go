package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/skribb-ai/backend/internal/errs"
	"github.com/skribb-ai/backend/internal/model"
	"github.com/skribb-ai/backend/internal/repository"
)

// NoteService defines owner-scoped CRUD over notes.
type NoteService interface {
	// List returns the user's notes, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]model.Note, error)
	// Create stores a new note under userID, applying defaults for blank fields.
	Create(ctx context.Context, userID uuid.UUID, title, content, noteType, status string) (*model.Note, error)
	// Update applies upd to the note after verifying ownership.
	Update(ctx context.Context, userID, noteID uuid.UUID, upd model.NoteUpdate) (*model.Note, error)
	// Delete removes the note after verifying ownership.
	Delete(ctx context.Context, userID, noteID uuid.UUID) error
}

type NoteServiceImpl struct {
	repo repository.NoteRepository
}

var _ NoteService = (*NoteServiceImpl)(nil)

// NewNoteService constructs NoteService.
func NewNoteService(repo repository.NoteRepository) *NoteServiceImpl {
	return &NoteServiceImpl{repo: repo}
}

// List returns the user's notes ordered newest first.
func (s *NoteServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Note, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.repo.ListByUser(ctx, userID)
}

// Create inserts a note with sane defaults.
func (s *NoteServiceImpl) Create(ctx context.Context, userID uuid.UUID, title, content, noteType, status string) (*model.Note, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if title == "" {
		title = model.DefaultNoteTitle
	}
	if noteType == "" {
		noteType = model.DefaultNoteType
	}
	if status == "" {
		status = model.NoteStatusReady
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	n := &model.Note{
		ID:      id,
		UserID:  userID,
		Title:   title,
		Content: content,
		Type:    noteType,
		Status:  status,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update loads the note first: a missing note is ErrNotFound, a note owned by
// someone else is ErrForbidden and is left untouched.
func (s *NoteServiceImpl) Update(ctx context.Context, userID, noteID uuid.UUID, upd model.NoteUpdate) (*model.Note, error) {
	if err := s.checkOwner(ctx, userID, noteID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, noteID, upd)
}

// Delete removes the note if userID owns it.
func (s *NoteServiceImpl) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	if err := s.checkOwner(ctx, userID, noteID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, noteID)
}

func (s *NoteServiceImpl) checkOwner(ctx context.Context, userID, noteID uuid.UUID) error {
	if userID == uuid.Nil || noteID == uuid.Nil {
		return errs.ErrNotFound
	}
	n, err := s.repo.Get(ctx, noteID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return errs.ErrForbidden
	}
	return nil
}
