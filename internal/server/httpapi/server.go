package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/skribb-ai/backend/internal/notify"
	"github.com/skribb-ai/backend/internal/service"
)

// Enhancer is the text/code enhancement surface consumed by handlers.
// Implemented by *enhance.Client.
type Enhancer interface {
	EnhanceText(ctx context.Context, text string) (string, error)
	FixText(ctx context.Context, text string) (string, error)
	EnhanceCode(ctx context.Context, code, language string) (string, error)
}

// TextExtractor is the OCR surface consumed by handlers.
// Implemented by *ocr.Bridge.
type TextExtractor interface {
	ExtractText(ctx context.Context, image io.Reader, originalName, lang string) (string, error)
}

// Options collects the server's injected collaborators.
type Options struct {
	Auth     service.AuthService
	Notes    service.NoteService
	Enhancer Enhancer
	OCR      TextExtractor
	Notifier notify.Notifier
	Logger   *zap.Logger

	// Dev attaches upstream error detail to 500 bodies. Never set in production.
	Dev bool
	// MaxUploadBytes caps the /imagetotext request body. Zero means 15 MiB.
	MaxUploadBytes int64
	// UploadDir is where transient uploads are staged. Empty means os.TempDir.
	UploadDir string
}

const defaultMaxUpload = 15 << 20 // 15 MiB

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	notes     service.NoteService
	enhancer  Enhancer
	ocr       TextExtractor
	notifier  notify.Notifier
	log       *zap.Logger
	dev       bool
	maxUpload int64
	uploadDir string
}

// New constructs the HTTP server surface.
func New(opts Options) *Server {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:      opts.Auth,
		notes:     opts.Notes,
		enhancer:  opts.Enhancer,
		ocr:       opts.OCR,
		notifier:  opts.Notifier,
		log:       log,
		dev:       opts.Dev,
		maxUpload: maxUpload,
		uploadDir: opts.UploadDir,
	}
}

// Router builds the route table with logging and recovery applied to every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverPanics(s.log, s.dev))
	r.Use(logging(s.log))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/me", s.requireSession(s.handleMe)).Methods(http.MethodGet)
	r.HandleFunc("/verify-session", s.handleVerifySession).Methods(http.MethodPost)

	r.HandleFunc("/txt-enhance", s.handleTxtEnhance).Methods(http.MethodPost)
	r.HandleFunc("/txt-fix", s.handleTxtFix).Methods(http.MethodPost)
	r.HandleFunc("/code-enhance", s.handleCodeEnhance).Methods(http.MethodPost)

	r.HandleFunc("/imagetotext", s.handleImageToText).Methods(http.MethodPost)

	r.HandleFunc("/notes", s.requireSession(s.handleListNotes)).Methods(http.MethodGet)
	r.HandleFunc("/notes", s.requireSession(s.handleCreateNote)).Methods(http.MethodPost)
	r.HandleFunc("/notes/{id}", s.requireSession(s.handleUpdateNote)).Methods(http.MethodPut)
	r.HandleFunc("/notes/{id}", s.requireSession(s.handleDeleteNote)).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
