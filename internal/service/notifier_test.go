//go:build unit

package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"pharmasocial/internal/session"
)

// stubSessionKey selects a stubSessions bucket, standing in for the
// session data scs would attach to the request context.
type stubSessionKey struct{}

func sessionContext(name string) context.Context {
	return context.WithValue(context.Background(), stubSessionKey{}, name)
}

// stubSessions is a session.Manager keeping one key/value bucket per
// named session context.
type stubSessions struct {
	mu      sync.Mutex
	buckets map[string]map[string]string
}

var _ session.Manager = (*stubSessions)(nil)

func newStubSessions() *stubSessions {
	return &stubSessions{buckets: make(map[string]map[string]string)}
}

func (s *stubSessions) bucketName(ctx context.Context) string {
	if name, ok := ctx.Value(stubSessionKey{}).(string); ok {
		return name
	}
	return "default"
}

func (s *stubSessions) LoadAndSave(next http.Handler) http.Handler { return next }

func (s *stubSessions) Put(ctx context.Context, key string, val interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.bucketName(ctx)
	if s.buckets[name] == nil {
		s.buckets[name] = make(map[string]string)
	}
	if str, ok := val.(string); ok {
		s.buckets[name][key] = str
	}
}

func (s *stubSessions) GetString(ctx context.Context, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[s.bucketName(ctx)][key]
}

func (s *stubSessions) PopString(ctx context.Context, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.buckets[s.bucketName(ctx)]
	val := bucket[key]
	delete(bucket, key)
	return val
}

func (s *stubSessions) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, s.bucketName(ctx))
	return nil
}

func TestNotifierPushPop(t *testing.T) {
	n := NewNotifier(newStubSessions())
	ctx := sessionContext("a")

	n.Push(ctx, "Contenuto pubblicato con successo!", SeveritySuccess)
	n.Push(ctx, "Errore durante il salvataggio. Riprova.", SeverityError)

	notes := n.Pop(ctx)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notes))
	}
	if notes[0].Severity != SeveritySuccess || notes[1].Severity != SeverityError {
		t.Errorf("severities out of order: %+v", notes)
	}

	// Pop drains: a notification renders at most once.
	if again := n.Pop(ctx); len(again) != 0 {
		t.Errorf("second Pop should be empty, got %+v", again)
	}
}

func TestNotifierScopedToSession(t *testing.T) {
	n := NewNotifier(newStubSessions())
	ctxA := sessionContext("a")
	ctxB := sessionContext("b")

	n.Push(ctxA, "Benvenuto Admin!", SeveritySuccess)

	if notes := n.Pop(ctxB); len(notes) != 0 {
		t.Errorf("another session must not see the notification, got %+v", notes)
	}
	if notes := n.Pop(ctxA); len(notes) != 1 || notes[0].Message != "Benvenuto Admin!" {
		t.Errorf("pushing session should still see its notification, got %+v", notes)
	}
}

func TestNotifierExpiry(t *testing.T) {
	n := &Notifier{sessions: newStubSessions(), ttl: 10 * time.Millisecond}
	ctx := sessionContext("a")

	n.Push(ctx, "Categoria eliminata.", SeveritySuccess)
	time.Sleep(25 * time.Millisecond)

	if notes := n.Pop(ctx); len(notes) != 0 {
		t.Errorf("notification should have expired unseen, got %+v", notes)
	}
}
