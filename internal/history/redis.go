package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"answerhub/config"
)

// RedisStore persists histories as JSON lists keyed by workspace id.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: rdb}, nil
}

func historyKey(workspaceID string) string {
	return fmt.Sprintf("history:%s", workspaceID)
}

func (s *RedisStore) Append(ctx context.Context, workspaceID string, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return s.client.RPush(ctx, historyKey(workspaceID), data).Err()
}

func (s *RedisStore) Recent(ctx context.Context, workspaceID string, n int) ([]Message, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	vals, err := s.client.LRange(ctx, historyKey(workspaceID), start, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(vals))
	for _, v := range vals {
		var msg Message
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) All(ctx context.Context, workspaceID string) ([]Message, error) {
	return s.Recent(ctx, workspaceID, 0)
}

func (s *RedisStore) Clear(ctx context.Context, workspaceID string) error {
	return s.client.Del(ctx, historyKey(workspaceID)).Err()
}
