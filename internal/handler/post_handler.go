package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"pharmasocial/internal/logger"
	"pharmasocial/internal/middleware"
	"pharmasocial/internal/service"
	"pharmasocial/internal/store"
	"pharmasocial/internal/view"
)

// maxImageUploadBytes caps the size of an imported image. Larger
// uploads are rejected outright, never truncated.
const maxImageUploadBytes = 8 << 20

var errImageTooLarge = fmt.Errorf("image upload exceeds %d bytes", maxImageUploadBytes)

// PostHandler holds the dependencies for the catalog and post handlers.
type PostHandler struct {
	svc  service.ContentServicer
	view *view.View
	log  logger.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(svc service.ContentServicer, v *view.View, log logger.Logger) *PostHandler {
	return &PostHandler{svc: svc, view: v, log: log}
}

// postCard is a post enriched with its resolved category for
// rendering. A dangling category reference renders as uncategorized.
type postCard struct {
	store.Post
	CategoryName  string
	CategoryColor string
}

// categoryView is a category plus whether any post references it,
// which drives the delete warning.
type categoryView struct {
	store.Category
	HasPosts bool
}

// dashboardHandler renders the filtered catalog view.
func (h *PostHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	query := r.URL.Query().Get("q")
	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = "all"
	}

	posts := h.svc.FilteredPosts(query, selected)
	cards := make([]postCard, 0, len(posts))
	for _, p := range posts {
		card := postCard{Post: p, CategoryName: "Senza categoria"}
		if c, ok := h.svc.CategoryByID(p.CategoryID); ok {
			card.CategoryName = c.Name
			card.CategoryColor = c.Color
		}
		cards = append(cards, card)
	}

	categories := h.svc.Categories()
	catViews := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		catViews = append(catViews, categoryView{Category: c, HasPosts: h.svc.PostsInCategory(c.ID) > 0})
	}

	userInfo := middleware.GetUserInfo(r.Context())
	data := map[string]interface{}{
		"Title":            "Bacheca",
		"Posts":            cards,
		"Categories":       catViews,
		"Query":            query,
		"SelectedCategory": selected,
		"Palette":          store.Palette,
		"Toasts":           h.svc.Notifications(r.Context()),
		"UserInfo":         userInfo,
		"IsAdmin":          userInfo.Role == string(service.RoleAdmin),
		"CanEdit":          userInfo.Role == string(service.RoleAdmin) || userInfo.Role == string(service.RoleStaff),
	}
	if err := h.view.Render(w, "dashboard.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render dashboard", Code: http.StatusInternalServerError}
	}
	return nil
}

// newHandler displays the form for creating a post.
func (h *PostHandler) newHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderForm(w, r, store.Post{})
}

// editHandler displays the form pre-filled with an existing post.
func (h *PostHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	post, ok := h.svc.PostByID(id)
	if !ok {
		return &middleware.AppError{Error: fmt.Errorf("post %s not found", id), Message: "Contenuto non trovato", Code: http.StatusNotFound}
	}
	return h.renderForm(w, r, post)
}

func (h *PostHandler) renderForm(w http.ResponseWriter, r *http.Request, post store.Post) *middleware.AppError {
	data := map[string]interface{}{
		"Title":      "Contenuto",
		"Post":       post,
		"Categories": h.svc.Categories(),
		"Toasts":     h.svc.Notifications(r.Context()),
		"UserInfo":   middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, "post_form.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render post form", Code: http.StatusInternalServerError}
	}
	return nil
}

// saveHandler handles the form submission for creating or updating a
// post. An uploaded image file takes precedence over the hidden image
// field and is converted to a data URI; otherwise the hidden field
// carries either a generated data URI or the existing URL.
func (h *PostHandler) saveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}

	id := r.FormValue("id")
	draft := service.PostDraft{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		ImageURL:   r.FormValue("image_url"),
		CategoryID: r.FormValue("category_id"),
	}

	dataURI, err := readImageUpload(r)
	if errors.Is(err, errImageTooLarge) {
		return &middleware.AppError{Error: err, Message: "Immagine troppo grande (massimo 8 MB)", Code: http.StatusBadRequest}
	}
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to read uploaded image", Code: http.StatusBadRequest}
	}
	if dataURI != "" {
		draft.ImageURL = dataURI
	}

	if id == "" {
		err = h.svc.CreatePost(r.Context(), draft)
	} else {
		err = h.svc.UpdatePost(r.Context(), id, draft)
	}
	if errors.Is(err, service.ErrValidation) {
		// Back to the form; the notification explains the rejection.
		if id == "" {
			http.Redirect(w, r, "/posts/new", http.StatusFound)
		} else {
			http.Redirect(w, r, "/posts/"+url.PathEscape(id)+"/edit", http.StatusFound)
		}
		return nil
	}

	// Persistence failures also surface as a toast on the dashboard;
	// the session stays usable and the action can be retried.
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

// deleteHandler removes a post. The destructive action must be
// explicitly confirmed; an unconfirmed submission aborts with no state
// change and no notification.
func (h *PostHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if r.FormValue("confirm") != "true" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return nil
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		h.log.Error(err, "post delete failed")
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

type generateRequest struct {
	Title      string `json:"title"`
	CategoryID string `json:"categoryId"`
}

// generateCaptionHandler produces a caption for the draft in progress.
func (h *PostHandler) generateCaptionHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "richiesta non valida"})
		return nil
	}

	caption, err := h.svc.GenerateCaption(r.Context(), req.Title, req.CategoryID)
	if errors.Is(err, service.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "titolo e categoria sono obbligatori"})
		return nil
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "generazione non riuscita"})
		return nil
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": caption})
	return nil
}

// generateImageHandler produces a square image for the draft in
// progress, returned as a data URI.
func (h *PostHandler) generateImageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "richiesta non valida"})
		return nil
	}

	image, err := h.svc.GenerateImage(r.Context(), req.Title, req.CategoryID)
	if errors.Is(err, service.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "titolo e categoria sono obbligatori"})
		return nil
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "generazione non riuscita"})
		return nil
	}

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": image})
	return nil
}

// readImageUpload converts an uploaded image file into a data URI.
// Returns "" when no file was submitted and errImageTooLarge when the
// file exceeds maxImageUploadBytes.
func readImageUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	// Read one byte past the limit so an oversize file is
	// distinguishable from one that fits exactly.
	raw, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	if len(raw) > maxImageUploadBytes {
		return "", errImageTooLarge
	}
	if len(raw) == 0 {
		return "", nil
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(raw)), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
