package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/imaging"
	webembed "github.com/erazemk/najdeno/web"
)

// maxRequestBody caps request bodies. Uploads get some room for the other
// form fields and multipart framing.
const maxRequestBody = imaging.MaxUploadSize + 1<<20

// NewRouter creates the site router with all page routes registered.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxRequestBody))
	if len(s.CSRFKey) > 0 {
		r.Use(s.csrfMiddleware())
	}
	r.Use(s.SessionMiddleware)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.Static))))
	if s.Media != nil {
		r.Handle("/media/*", http.StripPrefix("/media/", s.Media.Handler()))
	}
	r.Get("/healthz", s.Health)

	// Public pages.
	r.Get("/", s.HomePage)
	r.Get("/items/", s.ItemsPage)
	r.Get("/item/{id}/", s.ItemDetailPage)
	r.Get("/create/", s.CreatePage)
	r.Post("/create/", s.CreateSubmit)

	r.Get("/admin-login/", s.LoginPage)
	r.Post("/admin-login/", s.LoginSubmit)
	r.Post("/logout/", s.Logout)

	// Staff pages.
	r.Group(func(r chi.Router) {
		r.Use(RequireStaff)

		r.Get("/admin-panel/", s.AdminPanel)
		r.Get("/admin-add-item/", s.AdminAddPage)
		r.Post("/admin-add-item/", s.AdminAddSubmit)

		r.Get("/item/{id}/edit/", s.EditPage)
		r.Post("/item/{id}/edit/", s.EditSubmit)
		r.Get("/item/{id}/delete/", s.DeleteConfirmPage)
		r.Post("/item/{id}/delete/", s.DeleteSubmit)
		r.Post("/item/{id}/toggle-status/", s.ToggleStatus)
		r.Post("/item/{id}/remove-image/", s.RemoveImageSubmit)
	})

	r.NotFound(s.notFound)

	return r
}
