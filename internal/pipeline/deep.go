package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

const (
	deepMaxSubQuestions  = 5
	deepKnowledgeK       = 8
	deepKnowledgeTop     = 4
	deepWebResults       = 3
	deepEvidenceCap      = 1500
	deepEvidenceContextN = 12
	deepSourcePages      = 10
)

// NewDeepResearch builds the multi-step research pipeline: decompose the
// question, gather evidence per sub-question from the knowledge index and
// the web, draft per-sub-question answers, write the structured report and
// attach the cited sources.
func NewDeepResearch(d Deps) *Pipeline {
	return NewPipeline("deep_research", d.Telemetry,
		Stage{Name: "plan", Run: func(ctx context.Context, st *State) error {
			prompt := fmt.Sprintf("Break the following question into 3-5 clear sub-questions.\nReturn them as a numbered list.\n\n%s", st.Query)
			reply, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}
			st.SubQuestions = parseSubQuestions(reply)
			if len(st.SubQuestions) == 0 {
				st.SubQuestions = []string{st.Query}
			}
			return nil
		}},
		Stage{Name: "research", Run: func(ctx context.Context, st *State) error {
			for _, sq := range st.SubQuestions {
				if d.Knowledge != nil {
					hits, err := d.Knowledge.Retrieve(ctx, sq, deepKnowledgeK)
					if err != nil {
						d.Telemetry.AdapterError("knowledge_retrieve")
					} else {
						hits = d.Knowledge.Rerank(ctx, sq, hits, deepKnowledgeTop)
						for _, h := range hits {
							st.Evidence = append(st.Evidence, h.Text)
						}
					}
				}
				pages, _ := d.searchAndFetch(ctx, sq, deepWebResults, 0, 0)
				for _, p := range pages {
					st.Pages = append(st.Pages, p)
					st.Evidence = append(st.Evidence, truncate(p.Content, deepEvidenceCap))
				}
			}
			return nil
		}},
		Stage{Name: "aggregate", Run: func(ctx context.Context, st *State) error {
			evidence := st.Evidence
			if len(evidence) > deepEvidenceContextN {
				evidence = evidence[:deepEvidenceContextN]
			}
			context := strings.Join(evidence, "\n\n")
			for _, sq := range st.SubQuestions {
				prompt := fmt.Sprintf("Using the evidence below, answer the sub-question briefly and clearly.\n\nEvidence:\n%s\n\nSub-question: %s", context, sq)
				reply, err := d.chat(ctx, prompt)
				if err != nil {
					return fmt.Errorf("aggregation: %w", err)
				}
				st.DraftAnswers = append(st.DraftAnswers, fmt.Sprintf("Sub-question: %s\n%s", sq, reply))
			}
			return nil
		}},
		Stage{Name: "write", Run: func(ctx context.Context, st *State) error {
			findings := strings.Join(st.DraftAnswers, "\n\n")
			prompt := fmt.Sprintf(`Write a structured answer with sections: Overview, Key Points, Details, Conclusion.
Use inline citations like [1], [2] where appropriate.

Original question:
%s

Findings:
%s`, st.Query, findings)
			reply, err := d.chat(ctx, prompt)
			if err != nil {
				return fmt.Errorf("report writing: %w", err)
			}
			st.Answer = reply
			return nil
		}},
		Stage{Name: "validate", Run: func(ctx context.Context, st *State) error {
			pages := st.Pages
			if len(pages) > deepSourcePages {
				pages = pages[:deepSourcePages]
			}
			st.Sources = AttachSources(st.Answer, pageSources(pages))
			return nil
		}},
	)
}

// parseSubQuestions extracts the sub-questions from a numbered list reply.
func parseSubQuestions(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !unicode.IsDigit(rune(line[0])) {
			continue
		}
		line = strings.TrimLeft(line, "0123456789.) ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == deepMaxSubQuestions {
			break
		}
	}
	return out
}
