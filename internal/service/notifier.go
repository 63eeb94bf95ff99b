package service

import (
	"context"
	"encoding/json"
	"time"

	"pharmasocial/internal/session"
)

// Severity classifies a notification for rendering.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient user-facing message. Every mutating
// action produces exactly one, success or failure.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// flashEntry is the stored form of a notification, carrying the moment
// it stops being worth showing.
type flashEntry struct {
	Notification
	ExpiresAt int64 `json:"expiresAt"`
}

// notificationTTL is how long a notification stays eligible for
// rendering before it expires on its own.
const notificationTTL = 3 * time.Second

// flashKey is the session key holding the pending notifications.
const flashKey = "flash_notifications"

// Notifier keeps each user's pending notifications inside their own
// session, so one session's toasts never render on another user's
// page. Entries not rendered within the TTL are dropped unseen.
type Notifier struct {
	sessions session.Manager
	ttl      time.Duration
}

// NewNotifier creates a Notifier with the standard 3 second TTL.
func NewNotifier(sessions session.Manager) *Notifier {
	return &Notifier{sessions: sessions, ttl: notificationTTL}
}

// Push queues a notification for the session carried by ctx.
func (n *Notifier) Push(ctx context.Context, message string, severity Severity) {
	entries := append(n.pending(ctx), flashEntry{
		Notification: Notification{Message: message, Severity: severity},
		ExpiresAt:    time.Now().Add(n.ttl).UnixMilli(),
	})
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	n.sessions.Put(ctx, flashKey, string(raw))
}

// Pop drains the session's notifications for rendering, discarding any
// that expired before a page asked for them.
func (n *Notifier) Pop(ctx context.Context) []Notification {
	entries := decodeEntries(n.sessions.PopString(ctx, flashKey))
	now := time.Now().UnixMilli()
	out := make([]Notification, 0, len(entries))
	for _, e := range entries {
		if e.ExpiresAt > now {
			out = append(out, e.Notification)
		}
	}
	return out
}

// pending returns the session's still-live entries without consuming
// them, so a second Push within one request appends rather than
// overwrites.
func (n *Notifier) pending(ctx context.Context) []flashEntry {
	entries := decodeEntries(n.sessions.GetString(ctx, flashKey))
	now := time.Now().UnixMilli()
	kept := entries[:0]
	for _, e := range entries {
		if e.ExpiresAt > now {
			kept = append(kept, e)
		}
	}
	return kept
}

func decodeEntries(raw string) []flashEntry {
	if raw == "" {
		return nil
	}
	var entries []flashEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}
