package auth

import (
	"fmt"
	"pharmasocial/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies installs the fixed authorization rules. It
// checks whether each policy exists before adding it, making the
// operation idempotent and safe to run on every application start.
//
// anonymous can only reach the login surface; staff inherits anonymous
// and gains the catalog plus content actions (create, edit, generate);
// admin inherits staff and gains the destructive and category
// management actions.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/login", "POST"},
		{"anonymous", "/static/*", "GET"},

		{"staff", "/", "GET"},
		{"staff", "/dashboard", "GET"},
		{"staff", "/posts/new", "GET"},
		{"staff", "/posts/:id/edit", "GET"},
		{"staff", "/posts/save", "POST"},
		{"staff", "/api/generate/caption", "POST"},
		{"staff", "/api/generate/image", "POST"},
		{"staff", "/auth/logout", "POST"},

		{"admin", "/posts/:id/delete", "POST"},
		{"admin", "/categories", "POST"},
		{"admin", "/categories/:id/delete", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	inherits := [][2]string{
		{"staff", "anonymous"},
		{"admin", "staff"},
	}
	for _, g := range inherits {
		if has, _ := e.HasRoleForUser(g[0], g[1]); !has {
			if _, err := e.AddRoleForUser(g[0], g[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", g[0], g[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
