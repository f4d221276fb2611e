package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), 30*time.Minute, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func guardSnapshot() editor.Snapshot {
	e := editor.New()
	e.SetNpcID("guard")
	e.AddObjective()
	return e.Snapshot()
}

// stores runs fn against every SessionStore implementation.
func stores(t *testing.T, fn func(t *testing.T, s SessionStore)) {
	t.Run("redis", func(t *testing.T) {
		s, _ := setupTestRedis(t)
		fn(t, s)
	})
	t.Run("mock", func(t *testing.T) {
		fn(t, NewMockStore())
	})
}

func TestSessionStore_CreateLoadDelete(t *testing.T) {
	stores(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		require.NoError(t, s.Ping(ctx))

		id, err := s.Create(ctx, guardSnapshot())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		snap, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "guard", snap.NpcID)
		assert.Equal(t, npcdoc.InteractionQuest, snap.InteractionType)
		assert.Len(t, snap.Quest.Objectives, 1)

		require.NoError(t, s.Delete(ctx, id))
		_, err = s.Load(ctx, id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, s.Delete(ctx, id), ErrSessionNotFound)
	})
}

func TestSessionStore_Update(t *testing.T) {
	stores(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		id, err := s.Create(ctx, guardSnapshot())
		require.NoError(t, err)

		snap, err := s.Update(ctx, id, func(e *editor.Editor) error {
			e.SetNpcID("captain")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "captain", snap.NpcID)

		loaded, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, snap.NpcID, loaded.NpcID)
		assert.Equal(t, snap.Interaction, loaded.Interaction)
	})
}

func TestSessionStore_FailedUpdateSavesNothing(t *testing.T) {
	stores(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		id, err := s.Create(ctx, guardSnapshot())
		require.NoError(t, err)

		_, err = s.Update(ctx, id, func(e *editor.Editor) error {
			e.SetNpcID("renamed")
			return e.RemoveObjective(ctx, 0) // no confirmer: declined
		})
		assert.ErrorIs(t, err, editor.ErrCancelled)

		loaded, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "guard", loaded.NpcID)
		assert.Len(t, loaded.Quest.Objectives, 1)
	})
}

func TestSessionStore_UpdateAppliesOptions(t *testing.T) {
	stores(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		id, err := s.Create(ctx, guardSnapshot())
		require.NoError(t, err)

		snap, err := s.Update(ctx, id, func(e *editor.Editor) error {
			return e.RemoveObjective(ctx, 0)
		}, editor.WithConfirmer(editor.AlwaysConfirm))
		require.NoError(t, err)
		assert.Empty(t, snap.Quest.Objectives)
	})
}

func TestSessionStore_UpdateMissing(t *testing.T) {
	stores(t, func(t *testing.T, s SessionStore) {
		called := false
		_, err := s.Update(context.Background(), uuid.New(), func(*editor.Editor) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.False(t, called)
	})
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	id, err := store.Create(ctx, guardSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey(id)))

	mr.FastForward(20 * time.Minute)
	_, err = store.Update(ctx, id, func(e *editor.Editor) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey(id)), "write should refresh the TTL")

	mr.FastForward(31 * time.Minute)
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_UpdateConflict(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	id, err := store.Create(ctx, guardSnapshot())
	require.NoError(t, err)

	_, err = store.Update(ctx, id, func(e *editor.Editor) error {
		// Another request saves the session while this one is mid-edit.
		_, otherErr := store.Update(ctx, id, func(other *editor.Editor) error {
			other.SetNpcID("winner")
			return nil
		})
		require.NoError(t, otherErr)
		e.SetNpcID("loser")
		return nil
	})
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "winner", loaded.NpcID)
}

func TestRedisStore_CorruptSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set(sessionKey(id), "{not json"))

	_, err := store.Load(context.Background(), id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestNewRedisStore_BareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(mr.Addr(), 0, testLogger())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, time.Hour, store.ttl)
}

func TestMockStore_PingError(t *testing.T) {
	s := NewMockStore()
	s.SetPingError(errors.New("down"))
	assert.Error(t, s.Ping(context.Background()))
}
