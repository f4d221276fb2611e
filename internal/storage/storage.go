package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-forge/pkg/editor"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConflict is returned by Update when another writer changed the
	// session between load and save. Nothing was written; retry with fresh state.
	ErrConflict = errors.New("session modified concurrently")
)

// SessionStore keeps editor snapshots between requests. Sessions expire
// after the store's TTL of inactivity.
type SessionStore interface {
	Ping(ctx context.Context) error
	Close() error

	Create(ctx context.Context, snap editor.Snapshot) (uuid.UUID, error)
	Load(ctx context.Context, id uuid.UUID) (editor.Snapshot, error)
	// Update restores the session into an editor built with opts, applies fn
	// and saves the result. If fn fails nothing is saved.
	Update(ctx context.Context, id uuid.UUID, fn func(*editor.Editor) error, opts ...editor.Option) (editor.Snapshot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}
