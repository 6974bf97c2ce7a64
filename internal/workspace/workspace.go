package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Embedder turns texts into vectors. A nil Embedder disables vector
// retrieval; the index then runs on BM25 alone.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// FileInfo describes one uploaded document.
type FileInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Chunks     int       `json:"chunks"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Workspace owns the uploaded documents, their index and the user profile
// for one conversation scope. All mutations go through the workspace mutex
// so concurrent requests against the same workspace serialize.
type Workspace struct {
	ID  string
	Dir string

	mu           sync.Mutex
	index        *DocIndex
	files        []FileInfo
	profileName  string
	touched      time.Time
	chunkSize    int
	chunkOverlap int
	embedder     Embedder
}

// AddDocument stores the raw file under the workspace directory, extracts
// its text and indexes it in chunks. Embedding failures degrade to lexical
// indexing only.
func (w *Workspace) AddDocument(ctx context.Context, name string, data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = time.Now()

	name = filepath.Base(name)
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}

	n, err := w.indexFileLocked(ctx, path)
	if err != nil {
		return 0, err
	}
	w.files = append(w.files, FileInfo{Name: name, Size: int64(len(data)), Chunks: n, UploadedAt: time.Now()})
	return n, nil
}

func (w *Workspace) indexFileLocked(ctx context.Context, path string) (int, error) {
	text, err := ExtractText(path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	parts := MakeChunks(text, w.chunkSize, w.chunkOverlap)
	if len(parts) == 0 {
		return 0, nil
	}

	name := filepath.Base(path)
	hash := sha1Hex(text)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			DocID:      fmt.Sprintf("%s#%03d", hash, i),
			Text:       part,
			ChunkIndex: i,
			Meta:       ChunkMetadata{Source: name, FilePath: path},
		})
	}

	var vecs [][]float32
	if w.embedder != nil {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		if embedded, err := w.embedder.EmbedMany(ctx, texts); err == nil {
			vecs = embedded
		}
	}

	if err := w.index.Add(chunks, vecs); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Retrieve returns the top-k chunks for the query, fusing BM25 and vector
// rankings when embeddings are available.
func (w *Workspace) Retrieve(ctx context.Context, q string, k int) ([]Hit, error) {
	w.mu.Lock()
	w.touched = time.Now()
	index := w.index
	w.mu.Unlock()
	return index.Retrieve(ctx, q, w.queryVec(ctx, q), k)
}

// Rerank reorders hits semantically against the query. Deterministic for a
// given query and hit set; never grows the result beyond topK.
func (w *Workspace) Rerank(ctx context.Context, q string, hits []Hit, topK int) []Hit {
	return w.index.Rerank(w.queryVec(ctx, q), hits, topK)
}

func (w *Workspace) queryVec(ctx context.Context, q string) []float32 {
	if w.embedder == nil {
		return nil
	}
	vecs, err := w.embedder.EmbedMany(ctx, []string{q})
	if err != nil || len(vecs) == 0 {
		return nil
	}
	return vecs[0]
}

// HasDocuments reports whether anything has been indexed.
func (w *Workspace) HasDocuments() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index.Len() > 0
}

func (w *Workspace) Files() []FileInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]FileInfo, len(w.files))
	copy(out, w.files)
	return out
}

func (w *Workspace) SetProfileName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.profileName = name
}

func (w *Workspace) ProfileName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profileName
}

func (w *Workspace) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = time.Now()
}

func (w *Workspace) TouchedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}
