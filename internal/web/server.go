package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emiliopalmerini/ocgbuilder/internal/builder"
	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
	sharedmw "github.com/emiliopalmerini/ocgbuilder/internal/shared/middleware"
)

//go:embed static/*
var staticFiles embed.FS

// Config holds server-specific configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	HistoryLimit    int
}

type Server struct {
	cfg     Config
	router  chi.Router
	catalog builder.CatalogProvider
	builder *builder.Service
	aoiRepo ports.AOIRepository
}

func NewServer(cfg Config, catalog builder.CatalogProvider, svc *builder.Service, aois ports.AOIRepository) *Server {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		catalog: catalog,
		builder: svc,
		aoiRepo: aois,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(sharedmw.HTMX)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleBuilder)
	r.Post("/daterange", s.handleDateRange)
	r.Route("/statistics/{key}", func(r chi.Router) {
		r.Post("/activate", s.handleStatisticActivate)
		r.Post("/confirm", s.handleStatisticConfirm)
		r.Post("/cancel", s.handleStatisticCancel)
	})
	r.Post("/request", s.handleRequestURL)
	r.Post("/requests", s.handleGenerate)

	r.Get("/aois", s.handleAOIs)
	r.Post("/aois", s.handleCreateAOI)
	r.Delete("/aois/{id}", s.handleDeleteAOI)

	r.Get("/api/catalog", s.handleAPICatalog)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", s.cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
