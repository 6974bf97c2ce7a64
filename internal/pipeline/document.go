package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	documentRetrieveK = 8
	documentRerankK   = 4

	// NoDocumentsMessage is returned verbatim when the workspace holds no
	// indexed documents.
	NoDocumentsMessage = "No documents found. Please upload files first."
)

// NewDocumentOnly builds the pipeline that answers strictly from the
// workspace's uploaded documents.
func NewDocumentOnly(d Deps) *Pipeline {
	return NewPipeline("document_only", d.Telemetry,
		Stage{Name: "retrieve", Run: func(ctx context.Context, st *State) error {
			ws, err := d.Workspaces.Get(ctx, st.WorkspaceID)
			if err != nil {
				return fmt.Errorf("workspace: %w", err)
			}
			st.WorkspaceID = ws.ID
			if !ws.HasDocuments() {
				st.DocHits = nil
				return nil
			}
			hits, err := ws.Retrieve(ctx, st.Query, documentRetrieveK)
			if err != nil {
				d.Telemetry.AdapterError("doc_retrieve")
				st.DocHits = nil
				return nil
			}
			st.DocHits = ws.Rerank(ctx, st.Query, hits, documentRerankK)
			return nil
		}},
		Stage{Name: "build_context", Run: func(ctx context.Context, st *State) error {
			if len(st.DocHits) == 0 {
				st.Context = ""
				return nil
			}
			parts := make([]string, 0, len(st.DocHits))
			for i, h := range st.DocHits {
				parts = append(parts, fmt.Sprintf("[DOC %d] %s:\n%s", i+1, h.Source, h.Text))
			}
			st.Context = strings.Join(parts, "\n\n---\n\n")
			return nil
		}},
		Stage{Name: "answer", Run: func(ctx context.Context, st *State) error {
			if st.Context == "" {
				st.Answer = NoDocumentsMessage
				st.Sources = []Source{}
				st.Followups = []string{}
				return nil
			}
			prompt := fmt.Sprintf(`You are a document analysis assistant.
Answer ONLY based on the provided documents. Do NOT use external knowledge.

DOCUMENTS:
%s

QUESTION: %s

Instructions:
- Answer based ONLY on document content
- Say "According to your documents..." when citing
- Quote relevant parts when helpful
- If info is not in documents, say so

ANSWER:`, st.Context, st.Query)
			answer, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("answer generation: %w", err)
			}
			st.Answer = answer
			st.Sources = docSources(st)
			st.Followups = GenerateFollowups(ctx, d.LLM, st.Query, st.Answer)
			return nil
		}},
	)
}

// docSources lists each distinct source document once, in hit order.
func docSources(st *State) []Source {
	seen := map[string]struct{}{}
	var out []Source
	for _, h := range st.DocHits {
		src := h.Source
		if src == "" {
			src = "Document"
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, Source{Title: src, URL: ""})
	}
	return out
}
