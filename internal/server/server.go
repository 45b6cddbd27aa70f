package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fermata/internal/config"
	"fermata/internal/filestore"
	"fermata/internal/identity"
	"fermata/internal/jamendo"
	"fermata/internal/metadata"
	"fermata/internal/session"
	"fermata/internal/songstore"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the web application: request handlers plus the clients they
// orchestrate.
type Server struct {
	config    *config.Config
	logger    *logrus.Logger
	sessions  *session.Manager
	identity  identity.Provider
	songs     songstore.Store
	files     *filestore.Store
	catalog   *jamendo.Client // nil when catalog search is disabled
	extractor *metadata.Extractor
	templates *template.Template

	httpServer *http.Server
}

// New creates a new server instance. catalog may be nil to disable the
// catalog-augmented search variant.
func New(
	cfg *config.Config,
	logger *logrus.Logger,
	sessions *session.Manager,
	identityProvider identity.Provider,
	songs songstore.Store,
	files *filestore.Store,
	catalog *jamendo.Client,
	extractor *metadata.Extractor,
) (*Server, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		sessions:  sessions,
		identity:  identityProvider,
		songs:     songs,
		files:     files,
		catalog:   catalog,
		extractor: extractor,
		templates: templates,
	}, nil
}

// routes builds the full handler chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.Handle("/upload", s.requireUser(http.HandlerFunc(s.handleUpload)))
	mux.HandleFunc("/songs", s.handleLibrary)
	mux.HandleFunc("/songs/", s.handleStream)
	mux.HandleFunc("/song/", s.handleSongDetail)
	mux.HandleFunc("/jamendo/", s.handleJamendoDetail)
	mux.HandleFunc("/health", s.handleHealth)

	var handler http.Handler = mux
	handler = s.withSession(handler)
	handler = s.corsMiddleware(handler)
	handler = s.requestLoggingMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.GetAddress(),
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"address":    s.config.GetAddress(),
		"upload_dir": s.files.Root(),
		"catalog":    s.catalog != nil,
	}).Info("Fermata server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
