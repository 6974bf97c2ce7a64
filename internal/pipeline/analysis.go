package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	analysisResults    = 6
	analysisContentCap = 2000
	analysisSnippetCap = 200
)

// NewAnalysis builds the structured analysis pipeline: gather research
// data from the web, then produce a sectioned analytical report.
func NewAnalysis(d Deps) *Pipeline {
	return NewPipeline("analysis", d.Telemetry,
		Stage{Name: "search", Run: func(ctx context.Context, st *State) error {
			pages, links := d.searchAndFetch(ctx, st.Query, analysisResults, analysisContentCap, analysisSnippetCap)
			var parts []string
			for _, p := range pages {
				parts = append(parts, fmt.Sprintf("[%s]:\n%s", p.Title, p.Content))
			}
			st.Pages = pages
			st.Links = links
			st.Context = strings.Join(parts, "\n\n")
			st.Sources = pageSources(pages)
			return nil
		}},
		Stage{Name: "analyze", Run: func(ctx context.Context, st *State) error {
			data := st.Context
			if data == "" {
				data = "No external data available."
			}
			prompt := fmt.Sprintf(`You are an expert analyst. Provide deep, comprehensive analysis.

RESEARCH DATA:
%s

ANALYSIS REQUEST: %s

Provide structured analysis with:

## Executive Summary
(2-3 sentence overview)

## Key Findings
(Bullet points of main discoveries)

## Detailed Analysis
(In-depth examination with evidence)

## Data & Statistics
(Numbers, trends, comparisons if available)

## Conclusions
(Main takeaways)

## Recommendations
(Actionable suggestions)

Use citations [1], [2] when referencing sources.

ANALYSIS:`, data, st.Query)
			answer, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("analysis: %w", err)
			}
			st.Answer = answer
			st.Followups = GenerateFollowups(ctx, d.LLM, st.Query, st.Answer)
			return nil
		}},
	)
}
