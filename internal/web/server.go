package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/media"
)

// Server holds all dependencies for page handlers.
type Server struct {
	Items     *items.Service
	Gate      *auth.Gate
	Limiter   *auth.LoginLimiter
	Media     *media.Store
	Templates *Templates

	// CookieSecure marks the session and CSRF cookies as HTTPS only.
	CookieSecure bool
	// CSRFKey enables CSRF protection when set.
	CSRFKey []byte
}

// NewServer loads the templates and returns a server for the given services.
func NewServer(svc *items.Service, gate *auth.Gate, limiter *auth.LoginLimiter) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		Items:     svc,
		Gate:      gate,
		Limiter:   limiter,
		Media:     svc.Media,
		Templates: templates,
	}, nil
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.Items.DB.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// itemID parses the {id} path parameter.
func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func itemURL(id int64) string {
	return "/item/" + strconv.FormatInt(id, 10) + "/"
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.Templates.RenderStatus(w, http.StatusNotFound, "error.html", &errorPage{
		PageData: s.page(r, "Not found"),
		Message:  "The page you are looking for does not exist.",
	})
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	slog.Error(msg, "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, "request failed", err)
	s.Templates.RenderStatus(w, http.StatusInternalServerError, "error.html", &errorPage{
		PageData: s.page(r, "Error"),
		Message:  "Something went wrong. Please try again later.",
	})
}

// handleError maps service errors that have a fixed response.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		redirectToLogin(w, r)
	case isNotFound(err):
		s.notFound(w, r)
	default:
		s.serverError(w, r, err)
	}
}

type errorPage struct {
	PageData
	Message string
}
