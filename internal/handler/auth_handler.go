package handler

import (
	"net/http"

	"pharmasocial/internal/logger"
	"pharmasocial/internal/service"
	"pharmasocial/internal/session"
	"pharmasocial/internal/view"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	svc      service.ContentServicer
	sessions session.Manager
	view     *view.View
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.ContentServicer, sm session.Manager, v *view.View, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sm, view: v, log: log}
}

// handleLoginForm renders the login page. Users with a live session go
// straight to the dashboard.
func (h *AuthHandler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.GetString(r.Context(), "user_role") != "" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	data := map[string]interface{}{
		"Title":  "Accedi",
		"Toasts": h.svc.Notifications(r.Context()),
	}
	if err := h.view.Render(w, "login.html", data); err != nil {
		h.log.Error(err, "Failed to render login page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleLogin checks the submitted pair against the fixed accounts and
// stores the granted role in the session. Failures bounce back to the
// login page where the notification is shown.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	role, err := h.svc.Login(r.Context(), email, password)
	if err != nil {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	h.sessions.Put(r.Context(), "user_role", string(role))
	h.sessions.Put(r.Context(), "user_subject", email)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLogout destroys the session, returning the user to the
// unauthenticated state.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
	}
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}
