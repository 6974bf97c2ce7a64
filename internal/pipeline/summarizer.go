package pipeline

import (
	"context"
	"fmt"

	"answerhub/provider"
)

// Summarize condenses text to roughly maxWords words.
func Summarize(ctx context.Context, llm provider.Provider, text string, maxWords int) (string, error) {
	prompt := fmt.Sprintf("Summarize the following text in about %d words:\n\n%s", maxWords, text)
	return llm.ChatCompletion(ctx, []provider.Message{{Role: "user", Content: prompt}})
}
