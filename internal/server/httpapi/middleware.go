package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skribb-ai/backend/internal/model"
)

type ctxKey string

const sessionKey ctxKey = "skribb.session"

// WithSession stores the resolved session in the request context.
func WithSession(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromCtx fetches the session placed by the auth gate.
func SessionFromCtx(ctx context.Context) (model.Session, bool) {
	v := ctx.Value(sessionKey)
	if v == nil {
		return model.Session{}, false
	}
	sess, ok := v.(model.Session)
	return sess, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// requireSession is the auth gate: it resolves the bearer token and either
// attaches the session to the request context or fails with 401 without
// invoking the downstream handler.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.auth.Verify(bearerToken(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Message:      "Authentication required",
				RequiresAuth: true,
			})
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logging records one structured line per request, metadata only.
func logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

// recoverPanics is the single top-level handler for unanticipated defects:
// log the stack, answer with a generic 500.
func recoverPanics(log *zap.Logger, dev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					body := errorBody{Message: "Internal server error"}
					if dev {
						if err, ok := rec.(error); ok {
							body.Message = err.Error()
						}
					}
					writeJSON(w, http.StatusInternalServerError, body)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
