package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"answerhub/config"
)

// PostgresStore persists histories in the chat_messages table. Schema is
// managed by the migrate command.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Append(ctx context.Context, workspaceID string, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO chat_messages (workspace_id, role, content, created_at) VALUES ($1,$2,$3,$4)`,
		workspaceID, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

func (s *PostgresStore) Recent(ctx context.Context, workspaceID string, n int) ([]Message, error) {
	query := `SELECT role, content, created_at FROM chat_messages WHERE workspace_id=$1 ORDER BY id`
	args := []any{workspaceID}
	if n > 0 {
		query = `SELECT role, content, created_at FROM (
			SELECT id, role, content, created_at FROM chat_messages
			WHERE workspace_id=$1 ORDER BY id DESC LIMIT $2
		) t ORDER BY id`
		args = append(args, n)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) All(ctx context.Context, workspaceID string) ([]Message, error) {
	return s.Recent(ctx, workspaceID, 0)
}

func (s *PostgresStore) Clear(ctx context.Context, workspaceID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE workspace_id=$1`, workspaceID)
	return err
}
