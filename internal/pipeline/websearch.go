package pipeline

import (
	"context"
	"fmt"
)

const (
	webSearchResults    = 6
	webSearchContentCap = 2500
	webSearchSnippetCap = 200
)

// NewWebSearch builds the live web answering pipeline: search, fetch,
// build context, answer with citations.
func NewWebSearch(d Deps) *Pipeline {
	return NewPipeline("web_search", d.Telemetry,
		Stage{Name: "search_fetch", Run: func(ctx context.Context, st *State) error {
			st.Pages, st.Links = d.searchAndFetch(ctx, st.Query, webSearchResults, webSearchContentCap, webSearchSnippetCap)
			return nil
		}},
		Stage{Name: "build_context", Run: func(ctx context.Context, st *State) error {
			st.Context = pagesContext(st.Pages)
			return nil
		}},
		Stage{Name: "answer", Run: func(ctx context.Context, st *State) error {
			var prompt string
			if st.Context != "" {
				prompt = fmt.Sprintf(`Use ONLY the following web sources to answer. Cite sources using [1], [2], etc.

WEB SOURCES:
%s

QUESTION: %s

Provide a comprehensive, well-cited answer:`, st.Context, st.Query)
			} else {
				prompt = fmt.Sprintf("Answer this question: %s", st.Query)
			}
			answer, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("answer generation: %w", err)
			}
			st.Answer = answer
			st.Sources = pageSources(st.Pages)
			return nil
		}},
		Stage{Name: "followups", Run: func(ctx context.Context, st *State) error {
			st.Followups = GenerateFollowups(ctx, d.LLM, st.Query, st.Answer)
			return nil
		}},
	)
}
