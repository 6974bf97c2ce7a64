package history

import (
	"context"
	"testing"
)

func TestInMemoryStoreAppendRecent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for _, m := range []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	} {
		if err := s.Append(ctx, "ws1", m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := s.Recent(ctx, "ws1", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "second" || msgs[1].Content != "third" {
		t.Errorf("unexpected window: %+v", msgs)
	}

	all, err := s.All(ctx, "ws1")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	for _, m := range all {
		if m.CreatedAt.IsZero() {
			t.Errorf("created_at not stamped: %+v", m)
		}
	}
}

func TestInMemoryStoreClearAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_ = s.Append(ctx, "ws1", Message{Role: "user", Content: "hello"})
	_ = s.Append(ctx, "ws2", Message{Role: "user", Content: "hi"})

	if err := s.Clear(ctx, "ws1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	msgs, _ := s.All(ctx, "ws1")
	if len(msgs) != 0 {
		t.Errorf("expected empty history after clear, got %d", len(msgs))
	}
	other, _ := s.All(ctx, "ws2")
	if len(other) != 1 {
		t.Errorf("clear leaked across workspaces: %d", len(other))
	}
}
