package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/skribb-ai/backend/internal/errs"
	"github.com/skribb-ai/backend/internal/model"
)

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// updateNoteRequest deliberately has no id or userId fields: those are
// immutable and silently dropped from any payload that carries them.
type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Type    *string `json:"type"`
	Status  *string `json:"status"`
}

func noteID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: Invalid note id", errs.ErrValidation)
	}
	return id, nil
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	notes, err := s.notes.List(r.Context(), sess.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notes": notes})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	var req createNoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.notes.Create(r.Context(), sess.UserID, req.Title, req.Content, req.Type, req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "note": n})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	id, err := noteID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req updateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.notes.Update(r.Context(), sess.UserID, id, model.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
		Type:    req.Type,
		Status:  req.Status,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": n})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	id, err := noteID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.notes.Delete(r.Context(), sess.UserID, id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
