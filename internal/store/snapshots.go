package store

import (
	"context"
	"fmt"
	"time"

	"demohub/internal/house"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotStore keeps one session's house save history as a Redis list.
// Each entry is a JSON snapshot; the newest is at the tail.
type RedisSnapshotStore struct {
	c   *redis.Client
	key string
	ttl time.Duration
}

// NewRedisSnapshotStore 创建基于 Redis list 的存档历史；ttl > 0 时每次追加都会续期
func NewRedisSnapshotStore(c *redis.Client, key string, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{c: c, key: key, ttl: ttl}
}

var _ house.SnapshotStore = (*RedisSnapshotStore)(nil)

func (s *RedisSnapshotStore) Append(ctx context.Context, snap house.Snapshot) error {
	b, err := house.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	pipe := s.c.TxPipeline()
	pipe.RPush(ctx, s.key, b)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append snapshot to %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) Latest(ctx context.Context) (house.Snapshot, error) {
	raw, err := s.c.LIndex(ctx, s.key, -1).Bytes()
	if err != nil {
		if err == redis.Nil {
			return house.Snapshot{}, house.ErrNoSnapshot
		}
		return house.Snapshot{}, fmt.Errorf("failed to read snapshot from %s: %w", s.key, err)
	}
	return house.UnmarshalSnapshot(raw)
}

func (s *RedisSnapshotStore) Len(ctx context.Context) (int, error) {
	n, err := s.c.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots in %s: %w", s.key, err)
	}
	return int(n), nil
}
