package pipeline

import (
	"context"
	"fmt"
	"strings"

	"answerhub/provider"
)

const maxFollowups = 4

// GenerateFollowups asks the LLM for short next questions the user might
// ask. Best-effort: any failure yields no followups, never an error.
func GenerateFollowups(ctx context.Context, llm provider.Provider, question, answer string) []string {
	if llm == nil {
		return nil
	}
	prompt := fmt.Sprintf(`Given the user question and the assistant answer, generate 3 short follow-up questions the user might ask next.

Rules:
- Keep them brief (max 8-12 words)
- No numbered list
- No explanations
- Only return bullet points starting with "-"
- Must be relevant and helpful

User question: %s
Assistant answer: %s

Generate follow-ups:`, question, answer)

	reply, err := llm.ChatCompletion(ctx, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "-•"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxFollowups {
			break
		}
	}
	return out
}
