package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	agenticFileK         = 6
	agenticWebResults    = 4
	agenticWebContentCap = 1500
	agenticWebSnippetCap = 150
	agenticKnowledgeK    = 4
	agenticKnowledgeTop  = 3
	agenticImageCount    = 6
	agenticFileCap       = 2500
	agenticWebCap        = 2500
	agenticKnowledgeCap  = 1500
	agenticShortQueryLen = 4
	agenticEmptyContext  = "No specific context found. Using general knowledge."
)

// Gates records which sub-agents a query activates.
type Gates struct {
	File      bool
	Web       bool
	Images    bool
	Knowledge bool
}

var fileGateWords = []string{
	"document", "file", "pdf", "uploaded", "summarize my",
	"according to", "in the file", "extract", "my notes",
}

var webGateWords = []string{
	"today", "current", "latest", "news", "weather", "stock",
	"who is", "what is", "where", "when", "price", "live",
	"recent", "update",
}

var imageGateWords = []string{
	"image", "photo", "picture", "logo", "show me", "look like",
	"flag", "screenshot",
}

var knowledgeGateWords = []string{
	"explain", "define", "concept", "theory", "how does",
	"what is", "meaning of",
}

// EvaluateGates decides which sub-agents run for a query. Short queries
// default the web gate on since they are usually entity lookups.
func EvaluateGates(query string) Gates {
	q := strings.ToLower(query)
	has := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
	return Gates{
		File:      has(fileGateWords),
		Web:       has(webGateWords) || len(strings.Fields(q)) <= agenticShortQueryLen,
		Images:    has(imageGateWords),
		Knowledge: has(knowledgeGateWords),
	}
}

// NewAgentic builds the multi-agent pipeline: a planner gates file, web,
// knowledge and image agents, then a synthesizer merges whatever contexts
// they produced.
func NewAgentic(d Deps) *Pipeline {
	return NewPipeline("agentic", d.Telemetry,
		Stage{Name: "plan", Run: func(ctx context.Context, st *State) error {
			st.Gates = EvaluateGates(st.Query)
			return nil
		}},
		Stage{Name: "file_agent", Run: func(ctx context.Context, st *State) error {
			if !st.Gates.File {
				return nil
			}
			ws, err := d.Workspaces.Get(ctx, st.WorkspaceID)
			if err != nil {
				return fmt.Errorf("workspace: %w", err)
			}
			st.WorkspaceID = ws.ID
			if !ws.HasDocuments() {
				return nil
			}
			hits, err := ws.Retrieve(ctx, st.Query, agenticFileK)
			if err != nil {
				d.Telemetry.AdapterError("doc_retrieve")
				return nil
			}
			var parts []string
			for _, h := range hits {
				parts = append(parts, h.Text)
				src := h.Source
				if src == "" {
					src = "Document"
				}
				st.FileSources = append(st.FileSources, Source{Title: src, URL: ""})
			}
			st.FileContext = strings.Join(parts, "\n\n")
			return nil
		}},
		Stage{Name: "web_agent", Run: func(ctx context.Context, st *State) error {
			if !st.Gates.Web {
				return nil
			}
			pages, links := d.searchAndFetch(ctx, st.Query, agenticWebResults, agenticWebContentCap, agenticWebSnippetCap)
			var parts []string
			for _, p := range pages {
				parts = append(parts, fmt.Sprintf("[%s]: %s", p.Title, p.Content))
				st.WebSources = append(st.WebSources, Source{Title: p.Title, URL: p.URL})
			}
			st.WebContext = strings.Join(parts, "\n\n")
			st.Links = links
			return nil
		}},
		Stage{Name: "knowledge_agent", Run: func(ctx context.Context, st *State) error {
			if !st.Gates.Knowledge || d.Knowledge == nil {
				return nil
			}
			hits, err := d.Knowledge.Retrieve(ctx, st.Query, agenticKnowledgeK)
			if err != nil {
				d.Telemetry.AdapterError("knowledge_retrieve")
				return nil
			}
			hits = d.Knowledge.Rerank(ctx, st.Query, hits, agenticKnowledgeTop)
			var parts []string
			for _, h := range hits {
				parts = append(parts, h.Text)
			}
			st.KnowledgeContext = strings.Join(parts, "\n\n")
			return nil
		}},
		Stage{Name: "image_agent", Run: func(ctx context.Context, st *State) error {
			if !st.Gates.Images || d.Images == nil {
				return nil
			}
			images, err := d.Images.SearchImages(ctx, st.Query, agenticImageCount)
			if err != nil {
				d.Telemetry.AdapterError("image_search")
				return nil
			}
			for _, img := range images {
				st.Images = append(st.Images, Image{
					Title: img.Title, ThumbnailURL: img.ThumbnailURL, ContentURL: img.ContentURL,
				})
			}
			return nil
		}},
		Stage{Name: "synthesize", Run: func(ctx context.Context, st *State) error {
			var contexts []string
			if st.FileContext != "" {
				contexts = append(contexts, "FROM YOUR DOCUMENTS:\n"+truncate(st.FileContext, agenticFileCap))
			}
			if st.WebContext != "" {
				contexts = append(contexts, "FROM THE WEB:\n"+truncate(st.WebContext, agenticWebCap))
			}
			if st.KnowledgeContext != "" {
				contexts = append(contexts, "KNOWLEDGE BASE:\n"+truncate(st.KnowledgeContext, agenticKnowledgeCap))
			}
			if len(contexts) == 0 {
				contexts = append(contexts, agenticEmptyContext)
			}
			st.Context = strings.Join(contexts, "\n\n---\n\n")

			prompt := fmt.Sprintf(`You are an assistant that synthesizes information from multiple sources.

AVAILABLE CONTEXT:
%s

USER QUESTION: %s

INSTRUCTIONS:
1. Prioritize the user's documents if relevant
2. Add real-time info from the web when available
3. Use the knowledge base for background
4. Cite sources appropriately
5. Be comprehensive but concise

SYNTHESIZED ANSWER:`, st.Context, st.Query)

			answer, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("synthesis: %w", err)
			}
			st.Answer = answer
			st.Followups = GenerateFollowups(ctx, d.LLM, st.Query, st.Answer)

			st.Sources = append([]Source{}, st.FileSources...)
			st.Sources = append(st.Sources, st.WebSources...)
			return nil
		}},
	)
}
