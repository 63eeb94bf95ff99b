//go:build unit

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pharmasocial/internal/config"
	"pharmasocial/internal/logger"
	"pharmasocial/internal/service"
	"pharmasocial/internal/session"
	"pharmasocial/internal/store"
)

// mockSessionManager records session writes so tests can assert on what
// the handlers stored without spinning up scs.
type mockSessionManager struct {
	values       map[string]string
	destroyCalls int
}

var _ session.Manager = (*mockSessionManager)(nil)

func newMockSessionManager() *mockSessionManager {
	return &mockSessionManager{values: make(map[string]string)}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }

func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	if s, ok := val.(string); ok {
		m.values[key] = s
	}
}

func (m *mockSessionManager) GetString(ctx context.Context, key string) string {
	return m.values[key]
}

func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	val := m.values[key]
	delete(m.values, key)
	return val
}

func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalls++
	m.values = make(map[string]string)
	return nil
}

// mockContentService stubs the controller surface; only the members the
// auth handlers touch carry behavior.
type mockContentService struct {
	role       service.Role
	loginErr   error
	loginCalls int
	lastEmail  string

	caption     string
	captionErr  error
	createCalls int
	lastDraft   service.PostDraft
	deleteCalls int
	lastDeleted string
}

var _ service.ContentServicer = (*mockContentService)(nil)

func (m *mockContentService) Login(ctx context.Context, email, password string) (service.Role, error) {
	m.loginCalls++
	m.lastEmail = email
	return m.role, m.loginErr
}

func (m *mockContentService) Posts() []store.Post                             { return nil }
func (m *mockContentService) Categories() []store.Category                    { return nil }
func (m *mockContentService) FilteredPosts(query, categoryID string) []store.Post { return nil }
func (m *mockContentService) PostByID(id string) (store.Post, bool)           { return store.Post{}, false }
func (m *mockContentService) CategoryByID(id string) (store.Category, bool) {
	return store.Category{}, false
}
func (m *mockContentService) PostsInCategory(id string) int                          { return 0 }
func (m *mockContentService) CreatePost(ctx context.Context, d service.PostDraft) error {
	m.createCalls++
	m.lastDraft = d
	return nil
}
func (m *mockContentService) UpdatePost(ctx context.Context, id string, d service.PostDraft) error {
	return nil
}
func (m *mockContentService) DeletePost(ctx context.Context, id string) error {
	m.deleteCalls++
	m.lastDeleted = id
	return nil
}
func (m *mockContentService) CreateCategory(ctx context.Context, name, color string) error {
	return nil
}
func (m *mockContentService) DeleteCategory(ctx context.Context, id string) error { return nil }
func (m *mockContentService) GenerateCaption(ctx context.Context, title, categoryID string) (string, error) {
	return m.caption, m.captionErr
}
func (m *mockContentService) GenerateImage(ctx context.Context, title, categoryID string) (string, error) {
	return "", nil
}
func (m *mockContentService) Notifications(ctx context.Context) []service.Notification { return nil }

func discardLogger() logger.Logger {
	return logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
}

func TestHandleLogin(t *testing.T) {
	t.Run("valid credentials store the role and redirect", func(t *testing.T) {
		svc := &mockContentService{role: service.RoleAdmin}
		sm := newMockSessionManager()
		h := NewAuthHandler(svc, sm, nil, discardLogger())

		form := url.Values{"email": {"admin@social.it"}, "password": {"admin"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		h.handleLogin(rr, req)

		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("expected redirect to /dashboard, got %q", loc)
		}
		if sm.values["user_role"] != "admin" {
			t.Errorf("expected role stored in session, got %q", sm.values["user_role"])
		}
		if sm.values["user_subject"] != "admin@social.it" {
			t.Errorf("expected subject stored in session, got %q", sm.values["user_subject"])
		}
		if svc.loginCalls != 1 || svc.lastEmail != "admin@social.it" {
			t.Errorf("unexpected service interaction: %d calls, email %q", svc.loginCalls, svc.lastEmail)
		}
	})

	t.Run("rejected credentials bounce back without a session", func(t *testing.T) {
		svc := &mockContentService{role: service.RoleAnonymous, loginErr: service.ErrInvalidCredentials}
		sm := newMockSessionManager()
		h := NewAuthHandler(svc, sm, nil, discardLogger())

		form := url.Values{"email": {"admin@social.it"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		h.handleLogin(rr, req)

		if loc := rr.Header().Get("Location"); loc != "/auth/login" {
			t.Errorf("expected redirect back to login, got %q", loc)
		}
		if len(sm.values) != 0 {
			t.Errorf("failed login must not write to the session: %v", sm.values)
		}
	})
}

func TestHandleLoginFormRedirectsWhenAuthenticated(t *testing.T) {
	sm := newMockSessionManager()
	sm.values["user_role"] = "staff"
	h := NewAuthHandler(&mockContentService{}, sm, nil, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rr := httptest.NewRecorder()

	h.handleLoginForm(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}
}

func TestHandleLogout(t *testing.T) {
	sm := newMockSessionManager()
	sm.values["user_role"] = "admin"
	sm.values["user_subject"] = "admin@social.it"
	h := NewAuthHandler(&mockContentService{}, sm, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr := httptest.NewRecorder()

	h.handleLogout(rr, req)

	if sm.destroyCalls != 1 {
		t.Errorf("expected the session to be destroyed once, got %d", sm.destroyCalls)
	}
	if len(sm.values) != 0 {
		t.Errorf("session values should be gone after logout: %v", sm.values)
	}
	if loc := rr.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("expected redirect to login, got %q", loc)
	}
}
