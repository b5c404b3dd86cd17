package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	webembed "github.com/erazemk/najdeno/web"
)

// markdown renders item descriptions. Raw HTML in the input is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"categoryName": func(category string) string {
			switch category {
			case model.CategoryLost:
				return "Lost"
			case model.CategoryFound:
				return "Found"
			default:
				return category
			}
		},
		"nextStatus": model.ToggleStatus,
		"statusClass": func(status string) string {
			if status == model.StatusClaimed {
				return "status-claimed"
			}
			return "status-pending"
		},
		"mediaURL": func(ref string) string {
			return "/media/" + ref
		},
		"formatDate": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 15:04")
		},
		"count": func(counts map[string]map[string]int, category, status string) int {
			return counts[category][status]
		},
	}
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// pages lists every page template. Each is parsed together with layout.html.
var pages = []string{
	"home.html",
	"items.html",
	"item_detail.html",
	"item_form.html",
	"item_confirm_delete.html",
	"login.html",
	"admin_panel.html",
	"error.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.Templates

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with status 200.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code. Output is buffered
// so a failing template never produces half a page.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Session *auth.Session
	Error   string
	Success string

	// CSRFField is a hidden input carrying the CSRF token, empty when
	// protection is disabled. CSRFToken is the bare token for scripts.
	CSRFField template.HTML
	CSRFToken string
}

func (s *Server) page(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		Session:   SessionFrom(r.Context()),
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
	}
}
