package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-forge/pkg/editor"
)

// RedisStore keeps sessions as JSON snapshots under session:<uuid> with a
// sliding TTL.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore accepts either a redis:// URL or a bare host:port.
func NewRedisStore(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations

func (r *RedisStore) Create(ctx context.Context, snap editor.Snapshot) (uuid.UUID, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	id := uuid.New()
	ok, err := r.client.SetNX(ctx, sessionKey(id), data, r.ttl).Result()
	if err != nil {
		r.logger.Error("Failed to create session", "session_id", id, "error", err)
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return uuid.Nil, fmt.Errorf("session %s already exists", id)
	}
	return id, nil
}

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID) (editor.Snapshot, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return editor.Snapshot{}, ErrSessionNotFound
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return editor.Snapshot{}, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSnapshot(data)
}

// Update runs load, mutate and save under WATCH so a concurrent writer makes
// the transaction fail with ErrConflict instead of being overwritten.
func (r *RedisStore) Update(ctx context.Context, id uuid.UUID, fn func(*editor.Editor) error, opts ...editor.Option) (editor.Snapshot, error) {
	key := sessionKey(id)
	var out editor.Snapshot

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to load session: %w", err)
		}
		snap, err := decodeSnapshot(data)
		if err != nil {
			return err
		}
		e, err := editor.Restore(snap, opts...)
		if err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}

		out = e.Snapshot()
		payload, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Warn("Session update conflicted", "session_id", id)
			return editor.Snapshot{}, ErrConflict
		}
		return editor.Snapshot{}, err
	}
	return out, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func decodeSnapshot(data []byte) (editor.Snapshot, error) {
	var snap editor.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return editor.Snapshot{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return snap, nil
}
