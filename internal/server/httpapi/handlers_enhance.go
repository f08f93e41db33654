package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skribb-ai/backend/internal/errs"
)

type textRequest struct {
	Text string `json:"text"`
}

type codeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (s *Server) handleTxtEnhance(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.enhancer.EnhanceText(r.Context(), req.Text)
	if err != nil {
		s.enhanceError(w, "txt-enhance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "enhancedText": out})
}

func (s *Server) handleTxtFix(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.enhancer.FixText(r.Context(), req.Text)
	if err != nil {
		s.enhanceError(w, "txt-fix", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "fixedText": out})
}

func (s *Server) handleCodeEnhance(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.enhancer.EnhanceCode(r.Context(), req.Code, req.Language)
	if err != nil {
		s.enhanceError(w, "code-enhance", err)
		return
	}
	lang := req.Language
	if lang == "" {
		lang = "plaintext"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "enhancedCode": out, "language": lang})
}

// enhanceError distinguishes bad input from upstream trouble: validation is
// the caller's fault, everything else is logged in full and reported
// generically in production.
func (s *Server) enhanceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, errs.ErrValidation) {
		s.writeError(w, err)
		return
	}
	s.log.Error("enhancement failed", zap.String("op", op), zap.Error(err))
	s.writeUpstreamError(w, "Failed to process text", err)
}
