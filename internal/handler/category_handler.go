package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"pharmasocial/internal/logger"
	"pharmasocial/internal/middleware"
	"pharmasocial/internal/service"
)

// CategoryHandler holds the dependencies for the category handlers.
type CategoryHandler struct {
	svc service.ContentServicer
	log logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc service.ContentServicer, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

// createHandler adds a category from the dashboard inline form. An
// empty color falls back to the first palette preset inside the
// service.
func (h *CategoryHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}

	if err := h.svc.CreateCategory(r.Context(), r.PostFormValue("name"), r.PostFormValue("color")); err != nil {
		h.log.Error(err, "category create rejected")
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

// deleteHandler removes a category once confirmed. Posts referencing
// it are untouched and render as uncategorized. If the deleted
// category was the active filter, the redirect resets the filter to
// "all".
func (h *CategoryHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.FormValue("confirm") != "true" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return nil
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		h.log.Error(err, "category delete failed")
	}

	target := "/dashboard"
	if active := r.FormValue("active_category"); active != "" && active != id {
		target = "/dashboard?category=" + url.QueryEscape(active)
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}
