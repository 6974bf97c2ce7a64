package workspace

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"

	"answerhub/tools/embedding"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	Source   string `json:"source"` // original file name or page title
	FilePath string `json:"file_path,omitempty"`
}

// Chunk is one indexed window of a document.
type Chunk struct {
	DocID      string        `json:"doc_id"`
	Text       string        `json:"text"`
	ChunkIndex int           `json:"chunk_index"`
	Meta       ChunkMetadata `json:"metadata"`
}

// Hit is a retrieval result.
type Hit struct {
	DocID    string
	Text     string
	Source   string
	FilePath string
	Score    float64
	Rank     int
}

// DocIndex combines a BM25 index with optional in-memory vectors over the
// same chunks. Lexical and vector rankings are fused with RRF.
type DocIndex struct {
	mu      sync.RWMutex
	bleve   bleve.Index
	meta    map[string]Chunk
	vectors []embedding.EmbedVec
}

func NewDocIndex() (*DocIndex, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &DocIndex{bleve: index, meta: make(map[string]Chunk)}, nil
}

// Add indexes chunks, optionally with their embedding vectors. vecs may be
// nil or shorter than chunks; missing vectors just skip vector retrieval
// for those chunks.
func (d *DocIndex) Add(chunks []Chunk, vecs [][]float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range chunks {
		if c.DocID == "" {
			c.DocID = fmt.Sprintf("%s#%03d", sha1Hex(c.Text), c.ChunkIndex)
		}
		if err := d.bleve.Index(c.DocID, c); err != nil {
			return fmt.Errorf("bleve index: %w", err)
		}
		d.meta[c.DocID] = c
		if i < len(vecs) && len(vecs[i]) > 0 {
			d.vectors = append(d.vectors, embedding.EmbedVec{DocID: c.DocID, Vec: vecs[i]})
		}
	}
	return nil
}

func (d *DocIndex) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.meta)
}

func (d *DocIndex) Bm25Search(q string, k int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	res, err := d.bleve.Search(searchReq)
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Hit
	for i, hit := range res.Hits {
		c := d.meta[hit.ID]
		out = append(out, Hit{
			DocID: hit.ID, Text: c.Text, Source: c.Meta.Source, FilePath: c.Meta.FilePath,
			Score: hit.Score, Rank: i + 1,
		})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func (d *DocIndex) VectorSearch(q []float32, k int) []Hit {
	d.mu.RLock()
	defer d.mu.RUnlock()
	type scored struct {
		id    string
		score float64
	}
	var scoreds []scored
	for _, v := range d.vectors {
		scoreds = append(scoreds, scored{id: v.DocID, score: cosine(q, v.Vec)})
	}
	sort.Slice(scoreds, func(i, j int) bool { return scoreds[i].score > scoreds[j].score })
	var out []Hit
	for i, sc := range scoreds {
		c := d.meta[sc.id]
		out = append(out, Hit{
			DocID: sc.id, Text: c.Text, Source: c.Meta.Source, FilePath: c.Meta.FilePath,
			Score: sc.score, Rank: i + 1,
		})
		if len(out) >= k {
			break
		}
	}
	return out
}

// Retrieve runs BM25 and, when a query vector is given, vector search,
// fusing the two rankings. Results are capped at k.
func (d *DocIndex) Retrieve(ctx context.Context, q string, qvec []float32, k int) ([]Hit, error) {
	bm, err := d.Bm25Search(q, k)
	if err != nil {
		return nil, err
	}
	if len(qvec) == 0 {
		return bm, nil
	}
	vec := d.VectorSearch(qvec, k)
	return FuseRRF(bm, vec, k), nil
}

// Rerank reorders hits by cosine similarity to the query vector. Hits
// without a stored vector keep their relative order at the tail. Without a
// query vector the input order is preserved, truncated to topK.
func (d *DocIndex) Rerank(qvec []float32, hits []Hit, topK int) []Hit {
	if topK <= 0 || topK > len(hits) {
		topK = len(hits)
	}
	if len(qvec) == 0 {
		out := make([]Hit, topK)
		copy(out, hits[:topK])
		return out
	}
	d.mu.RLock()
	byID := make(map[string][]float32, len(d.vectors))
	for _, v := range d.vectors {
		byID[v.DocID] = v.Vec
	}
	d.mu.RUnlock()

	out := make([]Hit, len(hits))
	copy(out, hits)
	sort.SliceStable(out, func(i, j int) bool {
		vi, iok := byID[out[i].DocID]
		vj, jok := byID[out[j].DocID]
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return cosine(qvec, vi) > cosine(qvec, vj)
	})
	out = out[:topK]
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// FuseRRF merges two rankings with reciprocal rank fusion.
func FuseRRF(a, b []Hit, k int) []Hit {
	type agg struct {
		item  Hit
		score float64
	}
	m := map[string]*agg{}
	add := func(list []Hit) {
		for _, h := range list {
			x, ok := m[h.DocID]
			if !ok {
				m[h.DocID] = &agg{item: h}
				x = m[h.DocID]
			}
			x.score += 1.0 / float64(rrfK+h.Rank)
		}
	}
	add(a)
	add(b)
	items := make([]*agg, 0, len(m))
	for _, v := range m {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score > items[j].score })
	if k > len(items) {
		k = len(items)
	}
	out := make([]Hit, 0, k)
	for i := 0; i < k; i++ {
		h := items[i].item
		h.Score = items[i].score
		h.Rank = i + 1
		out = append(out, h)
	}
	return out
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
