package httpapi

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/skribb-ai/backend/internal/errs"
	"github.com/skribb-ai/backend/internal/model"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: Request body must be valid JSON", errs.ErrValidation)
	}
	return nil
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.notifier != nil {
		s.notifier.SignupAnnounce(u.Username)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	u, token, err := s.auth.Login(r.Context(), req.Email, req.Password, remoteIP(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u, "token": token})
}

// handleLogout always answers 200: logout is idempotent from the caller's
// perspective, even for unknown or absent tokens.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromCtx(r.Context())
	u, err := s.auth.Me(r.Context(), sess.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

// handleVerifySession accepts the token as a bearer header or a {token} body.
func (s *Server) handleVerifySession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		var body struct {
			Token string `json:"token"`
		}
		// Body is optional here; a decode failure just means no token.
		_ = json.NewDecoder(r.Body).Decode(&body)
		token = body.Token
	}

	sess, ok := s.auth.Verify(token)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "valid": true, "user": sessionUser(sess)})
}

// sessionUser shapes the denormalized session snapshot as a user object.
func sessionUser(sess model.Session) map[string]any {
	return map[string]any{
		"id":       sess.UserID,
		"username": sess.Username,
		"email":    sess.Email,
	}
}
