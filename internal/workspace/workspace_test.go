package workspace

import (
	"context"
	"testing"
	"time"

	"answerhub/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.WorkspaceConfig{
		DataDir:      t.TempDir(),
		ChunkSize:    400,
		ChunkOverlap: 80,
	}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestManagerMintsAndReturnsWorkspaces(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	ws, err := m.Get(ctx, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ws.ID == "" {
		t.Fatal("expected minted workspace id")
	}

	again, err := m.Get(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get existing: %v", err)
	}
	if again != ws {
		t.Error("same id should return same workspace")
	}
}

func TestWorkspaceUploadAndRetrieve(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	ws, _ := m.Get(ctx, "docs")

	if ws.HasDocuments() {
		t.Fatal("fresh workspace should have no documents")
	}

	n, err := ws.AddDocument(ctx, "notes.txt", []byte("answerhub indexes uploaded documents for retrieval"))
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if n == 0 {
		t.Fatal("expected at least one chunk")
	}
	if !ws.HasDocuments() {
		t.Error("workspace should report documents after upload")
	}

	hits, err := ws.Retrieve(ctx, "uploaded documents", 4)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected retrieval hit")
	}
	if hits[0].Source != "notes.txt" {
		t.Errorf("expected source notes.txt, got %q", hits[0].Source)
	}

	files := ws.Files()
	if len(files) != 1 || files[0].Name != "notes.txt" {
		t.Errorf("file listing wrong: %+v", files)
	}
}

func TestManagerClearAndSweep(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	ws, _ := m.Get(ctx, "old")
	_, _ = ws.AddDocument(ctx, "a.txt", []byte("stale content"))

	if err := m.Clear("old"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := m.Lookup("old"); ok {
		t.Error("cleared workspace still registered")
	}

	ws2, _ := m.Get(ctx, "idle")
	ws2.mu.Lock()
	ws2.touched = time.Now().Add(-48 * time.Hour)
	ws2.mu.Unlock()
	if n := m.Sweep(24 * time.Hour); n != 1 {
		t.Errorf("expected 1 swept workspace, got %d", n)
	}
}

func TestWorkspaceProfileName(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	ws, _ := m.Get(ctx, "profile")
	if ws.ProfileName() != "" {
		t.Fatal("fresh workspace should have no profile name")
	}
	ws.SetProfileName("Sam")
	if ws.ProfileName() != "Sam" {
		t.Errorf("profile name not stored")
	}
}
