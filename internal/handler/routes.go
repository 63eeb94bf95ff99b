package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pharmasocial/internal/middleware"
	"pharmasocial/internal/session"
	"pharmasocial/web"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	postHandler *PostHandler,
	categoryHandler *CategoryHandler,
	authHandler *AuthHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	sm session.Manager,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Sessions must load before the authorizer reads the role.
	r.Use(sm.LoadAndSave)
	r.Use(authzMiddleware)

	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	// Authentication routes
	r.Get("/auth/login", authHandler.handleLoginForm)
	r.Post("/auth/login", authHandler.handleLogin)
	r.Post("/auth/logout", authHandler.handleLogout)

	// Catalog and content management
	r.Method(http.MethodGet, "/dashboard", errorMiddleware(postHandler.dashboardHandler))
	r.Method(http.MethodGet, "/posts/new", errorMiddleware(postHandler.newHandler))
	r.Method(http.MethodGet, "/posts/{id}/edit", errorMiddleware(postHandler.editHandler))
	r.Method(http.MethodPost, "/posts/save", errorMiddleware(postHandler.saveHandler))
	r.Method(http.MethodPost, "/posts/{id}/delete", errorMiddleware(postHandler.deleteHandler))

	r.Method(http.MethodPost, "/categories", errorMiddleware(categoryHandler.createHandler))
	r.Method(http.MethodPost, "/categories/{id}/delete", errorMiddleware(categoryHandler.deleteHandler))

	// Generation API used by the post form
	r.Method(http.MethodPost, "/api/generate/caption", errorMiddleware(postHandler.generateCaptionHandler))
	r.Method(http.MethodPost, "/api/generate/image", errorMiddleware(postHandler.generateImageHandler))

	return r
}
