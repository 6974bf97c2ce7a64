package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"answerhub/internal/knowledge"
	"answerhub/internal/telemetry"
	"answerhub/internal/workspace"
	"answerhub/provider"
	"answerhub/tools/image_search"
	"answerhub/tools/web_fetch"
	"answerhub/tools/web_search"
)

// Deps bundles the capability adapters a pipeline builds its stages from.
type Deps struct {
	LLM        provider.Provider
	Search     web_search.WebSearcher
	Fetch      web_fetch.WebFetcher
	Images     image_search.ImageSearcher
	Workspaces *workspace.Manager
	Knowledge  *knowledge.Index
	Telemetry  *telemetry.Telemetry
	Logger     *log.Logger
}

// chat sends a system+user exchange and returns the reply.
func (d Deps) chat(ctx context.Context, userPrompt string) (string, error) {
	return d.LLM.ChatCompletion(ctx, []provider.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

// searchAndFetch searches the web and pulls readable content from each
// result, capping page content at contentCap and snippets at snippetCap.
// Degraded search or fetch calls shrink the result set instead of failing.
func (d Deps) searchAndFetch(ctx context.Context, q string, k, contentCap, snippetCap int) ([]Page, []Link) {
	results, err := d.Search.Search(ctx, q, k)
	if err != nil {
		d.Telemetry.AdapterError("web_search")
		if d.Logger != nil {
			d.Logger.Printf("web search degraded: %v", err)
		}
		return nil, nil
	}

	var pages []Page
	var links []Link
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		page, err := d.Fetch.Exec(ctx, r.URL)
		if err != nil || page.Empty() {
			d.Telemetry.AdapterError("web_fetch")
			continue
		}
		title := r.Title
		if title == "" {
			title = page.Title
		}
		pages = append(pages, Page{Title: title, URL: r.URL, Content: truncate(page.Text, contentCap)})
		links = append(links, Link{Title: title, URL: r.URL, Snippet: truncate(page.Text, snippetCap)})
	}
	return pages, links
}

func truncate(s string, n int) string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// pagesContext renders fetched pages as numbered context blocks.
func pagesContext(pages []Page) string {
	if len(pages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pages))
	for i, p := range pages {
		parts = append(parts, fmt.Sprintf("[%d] %s:\n%s", i+1, p.Title, p.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// pageSources converts pages into a source list in page order.
func pageSources(pages []Page) []Source {
	out := make([]Source, 0, len(pages))
	for _, p := range pages {
		out = append(out, Source{Title: p.Title, URL: p.URL})
	}
	return out
}
