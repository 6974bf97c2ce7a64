package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"answerhub/provider"
)

const wikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"

// Panel is a compact entity card for the sidebar.
type Panel struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Summary     string   `json:"summary"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	URL         string   `json:"url"`
	Facts       []string `json:"facts,omitempty"`
}

// PanelBuilder looks an entity up on Wikipedia and distills quick facts
// from the summary. The LLM step is best-effort; the panel is returned
// without facts when it fails.
type PanelBuilder struct {
	LLM        provider.Provider
	HTTPClient *http.Client
}

func NewPanelBuilder(llm provider.Provider) *PanelBuilder {
	return &PanelBuilder{
		LLM:        llm,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *PanelBuilder) Build(ctx context.Context, entity string) (Panel, error) {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return Panel{}, fmt.Errorf("empty entity")
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		wikipediaSummaryURL+url.PathEscape(strings.ReplaceAll(entity, " ", "_")), nil)
	if err != nil {
		return Panel{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return Panel{}, fmt.Errorf("wikipedia lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Panel{}, fmt.Errorf("wikipedia lookup status: %d", resp.StatusCode)
	}

	var raw struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Extract     string `json:"extract"`
		Thumbnail   struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Panel{}, fmt.Errorf("parse summary: %w", err)
	}

	panel := Panel{
		Title:       raw.Title,
		Description: raw.Description,
		Summary:     raw.Extract,
		Thumbnail:   raw.Thumbnail.Source,
		URL:         raw.ContentURLs.Desktop.Page,
	}
	panel.Facts = b.facts(ctx, panel)
	return panel, nil
}

func (b *PanelBuilder) facts(ctx context.Context, p Panel) []string {
	if b.LLM == nil || p.Summary == "" {
		return nil
	}
	prompt := fmt.Sprintf(
		"Extract up to 4 short factual bullet points about %s from the text below. One fact per line, starting with '- '. No other text.\n\n%s",
		p.Title, p.Summary)
	reply, err := b.LLM.ChatCompletion(ctx, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil
	}
	var facts []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		facts = append(facts, line)
		if len(facts) == 4 {
			break
		}
	}
	return facts
}
