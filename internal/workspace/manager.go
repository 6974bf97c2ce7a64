package workspace

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"answerhub/config"
)

// Manager hands out workspaces by id, creating them on first use. Unknown
// ids are minted fresh so clients can always continue with the returned id.
type Manager struct {
	cfg      config.WorkspaceConfig
	embedder Embedder
	logger   *log.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewManager(cfg config.WorkspaceConfig, embedder Embedder) (*Manager, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Manager{
		cfg:        cfg,
		embedder:   embedder,
		logger:     log.New(log.Writer(), "[WORKSPACE] ", log.LstdFlags),
		workspaces: make(map[string]*Workspace),
	}, nil
}

// Get returns the workspace for id, creating it when missing. An empty id
// mints a new workspace.
func (m *Manager) Get(ctx context.Context, id string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if ws, ok := m.workspaces[id]; ok {
		return ws, nil
	}

	dir := filepath.Join(m.cfg.DataDir, id)
	existed := false
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		existed = true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	index, err := NewDocIndex()
	if err != nil {
		return nil, err
	}
	ws := &Workspace{
		ID:           id,
		Dir:          dir,
		index:        index,
		touched:      time.Now(),
		chunkSize:    m.cfg.ChunkSize,
		chunkOverlap: m.cfg.ChunkOverlap,
		embedder:     m.embedder,
	}
	if existed {
		m.reindex(ctx, ws)
	}
	m.workspaces[id] = ws
	return ws, nil
}

// Lookup returns an existing workspace without creating one.
func (m *Manager) Lookup(id string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.workspaces[id]
	return ws, ok
}

// Clear drops the workspace and deletes its files on disk.
func (m *Manager) Clear(id string) error {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()

	dir := filepath.Join(m.cfg.DataDir, id)
	if ok {
		dir = ws.Dir
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove workspace dir: %w", err)
	}
	return nil
}

// Sweep drops workspaces idle for longer than ttl and returns how many
// were removed.
func (m *Manager) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	var stale []string
	for id, ws := range m.workspaces {
		if time.Since(ws.TouchedAt()) > ttl {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		if err := m.Clear(id); err != nil {
			m.logger.Printf("sweep %s: %v", id, err)
		}
	}
	if len(stale) > 0 {
		m.logger.Printf("swept %d idle workspaces", len(stale))
	}
	return len(stale)
}

// reindex rebuilds the index from files already on disk, e.g. after a
// restart. Failures skip the file.
func (m *Manager) reindex(ctx context.Context, ws *Workspace) {
	entries, err := os.ReadDir(ws.Dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(ws.Dir, e.Name())
		n, err := ws.indexFileLocked(ctx, path)
		if err != nil {
			m.logger.Printf("reindex %s: %v", e.Name(), err)
			continue
		}
		info, _ := e.Info()
		var size int64
		var mod time.Time
		if info != nil {
			size = info.Size()
			mod = info.ModTime()
		}
		ws.files = append(ws.files, FileInfo{Name: e.Name(), Size: size, Chunks: n, UploadedAt: mod})
	}
}
