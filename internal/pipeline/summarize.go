package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	summarizeResults     = 3
	summarizeContentCap  = 1500
	summarizeSnippetCap  = 150
	summarizeURLSnippet  = 200
	summarizeMaxWords    = 300
	summarizeEmptyAnswer = "Could not find content to summarize."
)

// NewSummarize builds the summarization pipeline. A URL input is fetched
// directly; anything else is treated as a topic to search and condense.
func NewSummarize(d Deps) *Pipeline {
	return NewPipeline("summarize", d.Telemetry,
		Stage{Name: "gather", Run: func(ctx context.Context, st *State) error {
			query := strings.TrimSpace(st.Query)
			if strings.HasPrefix(query, "http") {
				page, err := d.Fetch.Exec(ctx, query)
				if err != nil || page.Empty() {
					d.Telemetry.AdapterError("web_fetch")
					st.Context = ""
					return nil
				}
				st.Context = page.Text
				st.Links = []Link{{Title: "Source", URL: query, Snippet: truncate(page.Text, summarizeURLSnippet)}}
				st.Sources = []Source{{Title: "Source URL", URL: query}}
				return nil
			}

			pages, links := d.searchAndFetch(ctx, query, summarizeResults, summarizeContentCap, summarizeSnippetCap)
			var parts []string
			for _, p := range pages {
				parts = append(parts, p.Content)
			}
			st.Context = strings.Join(parts, "\n\n")
			st.Links = links
			st.Sources = pageSources(pages)
			return nil
		}},
		Stage{Name: "summarize", Run: func(ctx context.Context, st *State) error {
			if st.Context == "" {
				st.Answer = summarizeEmptyAnswer
			} else {
				summary, err := Summarize(ctx, d.LLM, st.Context, summarizeMaxWords)
				if err != nil {
					return fmt.Errorf("summarization: %w", err)
				}
				st.Answer = summary
			}
			st.Followups = GenerateFollowups(ctx, d.LLM, st.Query, st.Answer)
			return nil
		}},
	)
}
