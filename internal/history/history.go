package history

import (
	"context"
	"fmt"
	"time"

	"answerhub/config"
)

// Message is a single chat turn kept in workspace history.
type Message struct {
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps per-workspace conversation history in arrival order.
type Store interface {
	Append(ctx context.Context, workspaceID string, msg Message) error
	// Recent returns up to n most recent messages, oldest first.
	Recent(ctx context.Context, workspaceID string, n int) ([]Message, error)
	All(ctx context.Context, workspaceID string) ([]Message, error)
	Clear(ctx context.Context, workspaceID string) error
}

// NewStore builds the configured history backend.
func NewStore(cfg config.StorageConfig) (Store, error) {
	switch cfg.History {
	case "", "inmemory":
		return NewInMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.Redis)
	case "postgres":
		return NewPostgresStore(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported history store: %s", cfg.History)
	}
}
