package session

import (
	"context"
	"net/http"
)

// Manager is an interface that abstracts the session management
// implementation. This allows for easier testing and dependency
// injection. The production implementation is scs with its default
// in-memory store: sessions do not survive a restart, by design.
//
// Put/GetString carry the authenticated role and subject; PopString is
// the flash primitive the notification queue drains on render.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Destroy(ctx context.Context) error
}
