package web

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/erazemk/najdeno/internal/auth"
)

const (
	msgInvalidLogin    = "Invalid username or password."
	msgTooManyAttempts = "Too many login attempts. Please wait a minute and try again."
)

type loginPage struct {
	PageData
	Username string
	Next     string
}

// LoginPage handles GET /admin-login/.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if SessionFrom(r.Context()).IsStaff() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	s.Templates.Render(w, "login.html", &loginPage{
		PageData: s.page(r, "Staff login"),
		Next:     next,
	})
}

// LoginSubmit handles POST /admin-login/.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	data := &loginPage{
		PageData: s.page(r, "Staff login"),
		Username: username,
		Next:     next,
	}

	if !s.Limiter.Allow(clientIP(r)) {
		data.Error = msgTooManyAttempts
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "login.html", data)
		return
	}

	sess, err := s.Gate.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		data.Error = msgInvalidLogin
		s.Templates.Render(w, "login.html", data)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles POST /logout/.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Gate.Logout(r.Context(), SessionFrom(r.Context())); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext returns next when it is a local path and the admin panel otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/admin-panel/"
	}
	return next
}

// clientIP returns the request's address without the port. RealIP has
// already applied any proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
