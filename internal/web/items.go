package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/model"
)

// homeRecentItems is how many items the home page shows.
const homeRecentItems = 10

// itemForm holds submitted values for re-rendering a form.
type itemForm struct {
	Title       string
	Description string
	Category    string
	Location    string
	ContactInfo string
	Status      string
}

func formFromItem(item *model.Item) itemForm {
	return itemForm{
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Location:    item.Location,
		ContactInfo: item.ContactInfo,
		Status:      item.Status,
	}
}

func formFromInput(in items.Input) itemForm {
	return itemForm{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ContactInfo: in.ContactInfo,
		Status:      in.Status,
	}
}

type itemFormPage struct {
	PageData
	Action       string
	Submit       string
	Form         itemForm
	Errors       map[string]string
	Item         *model.Item
	ShowCategory bool
	ShowStatus   bool
}

// readItemInput parses an item form, multipart or urlencoded. The returned
// input may hold an open upload that the caller must close.
func readItemInput(r *http.Request) (items.Input, error) {
	err := r.ParseMultipartForm(maxRequestBody)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return items.Input{}, err
	}

	in := items.Input{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Location:    r.FormValue("location"),
		ContactInfo: r.FormValue("contact_info"),
		Status:      r.FormValue("status"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		in.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return items.Input{}, err
	}
	return in, nil
}

func closeUpload(in items.Input) {
	if c, ok := in.Image.(io.Closer); ok {
		c.Close()
	}
}

// renderFormErrors re-renders a form after a failed submission. It reports
// false when err is not a validation error.
func (s *Server) renderFormErrors(w http.ResponseWriter, page *itemFormPage, in items.Input, err error) bool {
	var verr *items.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	page.Form = formFromInput(in.Normalize())
	page.Errors = verr.Fields
	page.Error = "Please correct the errors below."
	s.Templates.Render(w, "item_form.html", page)
	return true
}

// HomePage handles GET /.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	list, err := s.Items.List(r.Context(), model.ItemFilter{})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(list) > homeRecentItems {
		list = list[:homeRecentItems]
	}

	data := &struct {
		PageData
		Items []model.Item
		Form  itemFormPage
	}{
		PageData: s.page(r, "Lost and found"),
		Items:    list,
	}
	data.Form = itemFormPage{PageData: data.PageData, Action: "/create/", Submit: "Report item"}
	if r.URL.Query().Get("reported") == "1" {
		data.Success = "Thank you. Your report has been submitted."
	}
	s.Templates.Render(w, "home.html", data)
}

// ItemsPage handles GET /items/.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if !model.ValidCategory(category) {
		category = ""
	}

	list, err := s.Items.List(r.Context(), model.ItemFilter{Category: category})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.Templates.Render(w, "items.html", &struct {
		PageData
		Items    []model.Item
		Category string
	}{
		PageData: s.page(r, "All items"),
		Items:    list,
		Category: category,
	})
}

// ItemDetailPage handles GET /item/{id}/.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	item, err := s.Items.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	data := &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(r, item.Title),
		Item:     item,
	}
	if r.URL.Query().Get("saved") == "1" {
		data.Success = "Item saved."
	}
	s.Templates.Render(w, "item_detail.html", data)
}

// CreatePage handles GET /create/.
func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "item_form.html", &itemFormPage{
		PageData: s.page(r, "Report a found item"),
		Action:   "/create/",
		Submit:   "Report item",
	})
}

// CreateSubmit handles POST /create/. Public reports are always found items.
func (s *Server) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := readItemInput(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer closeUpload(in)

	if _, err := s.Items.CreatePublic(r.Context(), in); err != nil {
		page := &itemFormPage{
			PageData: s.page(r, "Report a found item"),
			Action:   "/create/",
			Submit:   "Report item",
		}
		if !s.renderFormErrors(w, page, in, err) {
			s.serverError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/?reported=1", http.StatusSeeOther)
}

// EditPage handles GET /item/{id}/edit/.
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	item, err := s.Items.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.Templates.Render(w, "item_form.html", editFormPage(s.page(r, "Edit item"), item))
}

func editFormPage(pd PageData, item *model.Item) *itemFormPage {
	return &itemFormPage{
		PageData:     pd,
		Action:       itemURL(item.ID) + "edit/",
		Submit:       "Save changes",
		Form:         formFromItem(item),
		Item:         item,
		ShowCategory: true,
		ShowStatus:   true,
	}
}

// EditSubmit handles POST /item/{id}/edit/.
func (s *Server) EditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	in, err := readItemInput(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer closeUpload(in)

	sess := SessionFrom(r.Context())
	if _, err := s.Items.Update(r.Context(), sess, id, in); err != nil {
		var verr *items.ValidationError
		if errors.As(err, &verr) {
			current, getErr := s.Items.Get(r.Context(), id)
			if getErr != nil {
				s.handleError(w, r, getErr)
				return
			}
			s.renderFormErrors(w, editFormPage(s.page(r, "Edit item"), current), in, err)
			return
		}
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, itemURL(id)+"?saved=1", http.StatusSeeOther)
}

// DeleteConfirmPage handles GET /item/{id}/delete/.
func (s *Server) DeleteConfirmPage(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	item, err := s.Items.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.Templates.Render(w, "item_confirm_delete.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(r, "Delete item"),
		Item:     item,
	})
}

// DeleteSubmit handles POST /item/{id}/delete/. Scripts get JSON, forms a
// redirect to the item list.
func (s *Server) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	ajax := wantsJSON(r)

	id, ok := itemID(r)
	var err error
	if ok {
		err = s.Items.Delete(r.Context(), SessionFrom(r.Context()), id)
	}

	switch {
	case ajax && (!ok || isNotFound(err)):
		jsonResponse(w, http.StatusNotFound, map[string]any{"success": false, "error": "item not found"})
	case !ok:
		s.notFound(w, r)
	case ajax && err != nil:
		s.logError(r, "failed to delete item", err)
		jsonResponse(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
	case err != nil:
		s.handleError(w, r, err)
	case ajax:
		jsonResponse(w, http.StatusOK, map[string]any{"success": true})
	default:
		http.Redirect(w, r, "/items/", http.StatusSeeOther)
	}
}

// RemoveImageSubmit handles POST /item/{id}/remove-image/.
func (s *Server) RemoveImageSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := s.Items.RemoveImage(r.Context(), SessionFrom(r.Context()), id); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, itemURL(id)+"?saved=1", http.StatusSeeOther)
}

// ToggleStatus handles POST /item/{id}/toggle-status/.
func (s *Server) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	status, err := s.Items.ToggleStatus(r.Context(), SessionFrom(r.Context()), id)
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, map[string]string{"status": status})
	case isNotFound(err):
		jsonError(w, http.StatusNotFound, "item not found")
	default:
		s.logError(r, "failed to toggle item status", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
