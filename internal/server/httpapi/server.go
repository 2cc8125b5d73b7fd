// Package httpapi exposes the server over a JSON HTTP API. It owns request
// routing, bearer extraction, and the mapping of service errors to HTTP
// status codes; all protocol logic stays in the services package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/keywarden/internal/logging"
	"github.com/dmitrijs2005/keywarden/internal/server/services"
)

type Server struct {
	logger  logging.Logger
	auth    *services.AuthService
	courses *services.CourseService
	srv     *http.Server
}

func NewServer(addr string, logger logging.Logger, auth *services.AuthService, courses *services.CourseService) *Server {
	s := &Server{
		logger:  logger.With("module", "httpapi"),
		auth:    auth,
		courses: courses,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Post("/api/user/register", s.handleRegister)
	r.Post("/api/user/login", s.handleLogin)
	r.Post("/api/user/logout", s.handleLogout)
	r.Post("/api/user/provision", s.handleProvision)

	r.Get("/api/courses", s.handleCourseList)
	r.Post("/api/courses", s.handleCourseCreate)
	r.Put("/api/courses/{id}", s.handleCourseRename)
	r.Delete("/api/courses/{id}", s.handleCourseDelete)

	return r
}

// Handler returns the routed handler, for tests that drive the API through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
