package web

import (
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AdminPanel handles GET /admin-panel/.
func (s *Server) AdminPanel(w http.ResponseWriter, r *http.Request) {
	list, err := s.Items.List(r.Context(), model.ItemFilter{})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	counts, err := s.Items.Counts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := &struct {
		PageData
		Items  []model.Item
		Counts store.ItemCounts
	}{
		PageData: s.page(r, "Admin panel"),
		Items:    list,
		Counts:   counts,
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("added"), 10, 64); err == nil {
		data.Success = "Item #" + strconv.FormatInt(id, 10) + " added."
	}
	s.Templates.Render(w, "admin_panel.html", data)
}

func (s *Server) adminAddForm(r *http.Request) *itemFormPage {
	return &itemFormPage{
		PageData:     s.page(r, "Add item"),
		Action:       "/admin-add-item/",
		Submit:       "Add item",
		ShowCategory: true,
	}
}

// AdminAddPage handles GET /admin-add-item/.
func (s *Server) AdminAddPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "item_form.html", s.adminAddForm(r))
}

// AdminAddSubmit handles POST /admin-add-item/. An empty category is filed as found.
func (s *Server) AdminAddSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := readItemInput(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer closeUpload(in)

	item, err := s.Items.CreateAdmin(r.Context(), SessionFrom(r.Context()), in)
	if err != nil {
		if !s.renderFormErrors(w, s.adminAddForm(r), in, err) {
			s.handleError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/admin-panel/?added="+strconv.FormatInt(item.ID, 10), http.StatusSeeOther)
}
