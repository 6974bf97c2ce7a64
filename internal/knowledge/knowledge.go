package knowledge

import (
	"context"
	"log"

	"answerhub/internal/workspace"
	"answerhub/tools/web_fetch"
)

// Index is the shared background corpus used by research pipelines. It is
// built once at startup from seed pages and never mutated afterwards, so
// reads need no locking beyond what the doc index provides.
type Index struct {
	index    *workspace.DocIndex
	embedder workspace.Embedder
	logger   *log.Logger
}

func NewIndex(embedder workspace.Embedder) (*Index, error) {
	idx, err := workspace.NewDocIndex()
	if err != nil {
		return nil, err
	}
	return &Index{
		index:    idx,
		embedder: embedder,
		logger:   log.New(log.Writer(), "[KNOWLEDGE] ", log.LstdFlags),
	}, nil
}

// Build fetches the seed pages and indexes their readable text. Pages that
// fail to fetch are skipped.
func (x *Index) Build(ctx context.Context, fetcher web_fetch.WebFetcher, urls []string, chunkSize, chunkOverlap int) {
	for _, url := range urls {
		page, err := fetcher.Exec(ctx, url)
		if err != nil || page.Empty() {
			x.logger.Printf("seed fetch failed: %s", url)
			continue
		}
		parts := workspace.MakeChunks(page.Text, chunkSize, chunkOverlap)
		chunks := make([]workspace.Chunk, 0, len(parts))
		for i, part := range parts {
			chunks = append(chunks, workspace.Chunk{
				Text:       part,
				ChunkIndex: i,
				Meta:       workspace.ChunkMetadata{Source: page.Title, FilePath: page.URL},
			})
		}
		var vecs [][]float32
		if x.embedder != nil {
			texts := make([]string, len(chunks))
			for i, c := range chunks {
				texts[i] = c.Text
			}
			if embedded, err := x.embedder.EmbedMany(ctx, texts); err == nil {
				vecs = embedded
			}
		}
		if err := x.index.Add(chunks, vecs); err != nil {
			x.logger.Printf("index seed %s: %v", url, err)
		}
	}
	x.logger.Printf("knowledge index ready: %d chunks from %d seeds", x.index.Len(), len(urls))
}

func (x *Index) Len() int { return x.index.Len() }

func (x *Index) Retrieve(ctx context.Context, q string, k int) ([]workspace.Hit, error) {
	return x.index.Retrieve(ctx, q, x.queryVec(ctx, q), k)
}

func (x *Index) Rerank(ctx context.Context, q string, hits []workspace.Hit, topK int) []workspace.Hit {
	return x.index.Rerank(x.queryVec(ctx, q), hits, topK)
}

func (x *Index) queryVec(ctx context.Context, q string) []float32 {
	if x.embedder == nil {
		return nil
	}
	vecs, err := x.embedder.EmbedMany(ctx, []string{q})
	if err != nil || len(vecs) == 0 {
		return nil
	}
	return vecs[0]
}
