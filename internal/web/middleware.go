package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/erazemk/najdeno/internal/auth"
)

// SessionCookie holds the signed session token.
const SessionCookie = "session"

type webContextKey string

const sessionKey webContextKey = "session"

// SessionMiddleware resolves the session cookie, if any, and adds the session
// to the request context. Invalid or revoked sessions are cleared and the
// request continues anonymously.
func (s *Server) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.Gate.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthorized) {
				slog.Error("failed to authenticate session", "error", err)
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// SessionFrom returns the staff session of the request, or nil.
func SessionFrom(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionKey).(*auth.Session)
	return sess
}

// RequireStaff sends requests without a staff session to the login page.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).IsStaff() {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectToLogin sends the visitor to the login page with a next target
// they can GET once signed in. Form posts return to the item they were made
// on, or to the dashboard.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	var next string
	switch {
	case r.Method == http.MethodGet:
		next = r.URL.Path
		if r.URL.RawQuery != "" {
			next += "?" + r.URL.RawQuery
		}
	default:
		next = "/admin-panel/"
		if id, ok := itemID(r); ok {
			next = itemURL(id)
		}
	}
	http.Redirect(w, r, "/admin-login/?next="+url.QueryEscape(next), http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie clears the session cookie with consistent attributes.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// csrfMiddleware checks the CSRF token on unsafe requests. Forms carry it in
// a hidden field and scripts in the X-CSRF-Token header.
func (s *Server) csrfMiddleware() func(http.Handler) http.Handler {
	protect := csrf.Protect(s.CSRFKey,
		csrf.Secure(s.CookieSecure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.CookieSecure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	slog.Warn("csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	if wantsJSON(r) {
		jsonError(w, http.StatusForbidden, "invalid csrf token")
		return
	}
	s.Templates.RenderStatus(w, http.StatusForbidden, "error.html", &errorPage{
		PageData: s.page(r, "Forbidden"),
		Message:  "Your form has expired. Go back, reload the page and try again.",
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
