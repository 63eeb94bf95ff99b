package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"

	"pharmasocial/internal/session"
)

// Authorizer creates a new middleware for authorization. The role is
// read from the session (absent means anonymous), attached to the
// request context for downstream handlers and checked against the
// Casbin route policies.
func Authorizer(e *casbin.Enforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := sm.GetString(r.Context(), "user_role")
			if role == "" {
				role = "anonymous"
			}
			subject := sm.GetString(r.Context(), "user_subject")
			if subject == "" {
				subject = "anonymous"
			}

			userInfo := &UserInfo{Subject: subject, Role: role}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(role, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				// Unauthenticated users land on the login page
				// instead of a bare 403.
				if role == "anonymous" {
					http.Redirect(w, r, "/auth/login", http.StatusFound)
					return
				}
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
