// Package server serves the browser viewer: the board image of the current
// face, its component groups, and the live marker geometry of the active
// highlight.
//
// The viewer state is single-threaded. Every handler that touches it holds
// the server mutex, so requests are applied one at a time in arrival order.
// Rendering a face runs outside the mutex; the result is handed back under
// it, and a render that finishes after another face was chosen is dropped.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/pipeline"
	"github.com/matzehuels/boardview/pkg/render"
	"github.com/matzehuels/boardview/pkg/viewer"
)

// Server is the HTTP front end of one viewer.
type Server struct {
	mu     sync.Mutex
	viewer *viewer.Viewer

	runner *pipeline.Runner
	board  *pipeline.Board

	logger *log.Logger
	clock  highlight.Clock
	style  highlight.Style

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *log.Logger) Option     { return func(s *Server) { s.logger = l } }
func WithClock(c highlight.Clock) Option  { return func(s *Server) { s.clock = c } }
func WithStyle(st highlight.Style) Option { return func(s *Server) { s.style = st } }

// New returns a server for the loaded board b shown through v.
func New(runner *pipeline.Runner, b *pipeline.Board, v *viewer.Viewer, opts ...Option) *Server {
	s := &Server{
		viewer: v,
		runner: runner,
		board:  b,
		logger: log.New(io.Discard),
		clock:  highlight.ProcessClock(),
		style:  highlight.DefaultStyle(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/board/{face}.svg", s.handleBoard)
		r.Get("/groups", s.handleGroups)
		r.Post("/face/{face}", s.handleFace)
		r.Post("/select", s.handleSelect)
		r.Delete("/select", s.handleClear)
		r.Post("/marker-size", s.handleMarkerSize)
		r.Get("/markers", s.handleMarkers)
		r.Get("/locate", s.handleLocate)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ShowFace switches the viewer to face and renders it. The viewer mutex is
// released while the render runs.
func (s *Server) ShowFace(ctx context.Context, face board.Face) error {
	s.mu.Lock()
	s.viewer.SetFace(face)
	ready := s.viewer.Image() != nil
	s.mu.Unlock()
	if ready {
		return nil
	}

	img, err := s.runner.RenderFace(ctx, s.board, face)
	if err != nil {
		return err
	}
	return s.present(img)
}

// present hands a finished render to the viewer. A render overtaken by a
// later face switch is not an error: the image stays memoized in the
// runner for when that face is shown again.
func (s *Server) present(img *render.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current := s.viewer.Face(); img.Face != current {
		s.logger.Debug("dropping overtaken render", "face", img.Face, "showing", current)
		return nil
	}
	return s.viewer.ShowImage(img)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving viewer", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
