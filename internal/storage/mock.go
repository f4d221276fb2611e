package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-forge/pkg/editor"
)

// MockStore is an in-memory SessionStore for tests. Snapshots are stored as
// JSON so callers never share state with the store.
type MockStore struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID][]byte
	pingError error
}

var _ SessionStore = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{sessions: make(map[uuid.UUID][]byte)}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Create(ctx context.Context, snap editor.Snapshot) (uuid.UUID, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	id := uuid.New()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = data
	return id, nil
}

func (m *MockStore) Load(ctx context.Context, id uuid.UUID) (editor.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return editor.Snapshot{}, ErrSessionNotFound
	}
	return decodeSnapshot(data)
}

// Update holds the write lock for the whole load-mutate-save, so mock
// updates never conflict.
func (m *MockStore) Update(ctx context.Context, id uuid.UUID, fn func(*editor.Editor) error, opts ...editor.Option) (editor.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[id]
	if !ok {
		return editor.Snapshot{}, ErrSessionNotFound
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return editor.Snapshot{}, err
	}
	e, err := editor.Restore(snap, opts...)
	if err != nil {
		return editor.Snapshot{}, err
	}
	if err := fn(e); err != nil {
		return editor.Snapshot{}, err
	}
	out := e.Snapshot()
	payload, err := json.Marshal(out)
	if err != nil {
		return editor.Snapshot{}, fmt.Errorf("failed to marshal session: %w", err)
	}
	m.sessions[id] = payload
	return out, nil
}

func (m *MockStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}
