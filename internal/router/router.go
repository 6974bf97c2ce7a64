package router

import (
	"context"
	"log"
	"strings"
	"unicode"

	"answerhub/internal/telemetry"
	"answerhub/provider"
)

// Mode is the routing target for a query.
type Mode string

const (
	ModeLLM          Mode = "llm"
	ModeImage        Mode = "image"
	ModeWeb          Mode = "web"
	ModeRAG          Mode = "rag"
	ModeDeepResearch Mode = "deep_research"
)

var greetings = []string{"hi", "hello", "hey", "yo", "sup", "hi there", "hello there"}

var imageWords = []string{"image", "photo", "pic", "picture", "logo", "wallpaper", "screenshot"}

var realtimeWords = []string{
	"today", "now", "latest", "current",
	"price", "stock", "weather", "news",
	"update", "live", "score", "match", "schedule",
}

var worldFactWords = []string{
	"prime minister", "president", "capital of",
	"ceo", "founder", "population", "richest",
	"oldest", "largest", "smallest", "currency",
	"country", "state", "city", "minister",
	"government", "party",
}

var aiModelWords = []string{"gpt", "gemini", "llama", "claude", "grok", "mistral", "phi"}

var deepWords = []string{
	"compare", "analysis", "impact", "advantages", "disadvantages",
	"evaluate", "future", "strategy", "risk",
}

var definitionPrefixes = []string{"what is", "define", "explain"}

const classifierPrompt = `
Classify this query into exactly one mode:

- "web" -> real-time facts, entities, news, people, companies, trending topics
- "rag" -> definitions, conceptual explanations, structured factual info
- "llm" -> normal chat, creative tasks, responses without external info
- "deep_research" -> multi-step analysis, long reports, deep comparisons

Return ONLY one word: web, rag, llm, or deep_research.
`

// Router decides which pipeline handles a query. Cheap lexical rules run
// first in a fixed precedence order; only queries no rule claims reach the
// LLM classifier.
type Router struct {
	llm    provider.Provider
	tel    *telemetry.Telemetry
	logger *log.Logger
}

func New(llm provider.Provider, tel *telemetry.Telemetry) *Router {
	return &Router{
		llm:    llm,
		tel:    tel,
		logger: log.New(log.Writer(), "[ROUTER] ", log.LstdFlags),
	}
}

// Route classifies the query. It always returns a valid mode; classifier
// failures fall back to llm.
func (r *Router) Route(ctx context.Context, q string) Mode {
	mode := r.route(ctx, q)
	r.tel.RouterDecision(string(mode))
	return mode
}

func (r *Router) route(ctx context.Context, q string) Mode {
	q = strings.TrimSpace(q)

	if isGreeting(q) {
		return ModeLLM
	}
	if containsAny(q, imageWords) {
		return ModeImage
	}
	if containsAny(q, realtimeWords) {
		return ModeWeb
	}
	if containsAny(q, worldFactWords) {
		return ModeWeb
	}
	if containsAny(q, aiModelWords) {
		return ModeWeb
	}
	// Short entity queries (1-2 words) go straight to web.
	if len(strings.Fields(q)) <= 2 && hasCapitalizedWord(q) {
		return ModeWeb
	}
	if containsAny(q, deepWords) {
		return ModeDeepResearch
	}
	if hasDefinitionPrefix(q) {
		return ModeRAG
	}

	return r.classify(ctx, q)
}

// classify asks the LLM for a single-word mode decision.
func (r *Router) classify(ctx context.Context, q string) Mode {
	if r.llm == nil {
		return ModeLLM
	}
	reply, err := r.llm.ChatCompletion(ctx, []provider.Message{
		{Role: "system", Content: classifierPrompt},
		{Role: "user", Content: q},
	})
	if err != nil {
		r.logger.Printf("classifier failed, falling back to llm: %v", err)
		return ModeLLM
	}
	switch Mode(strings.ToLower(strings.TrimSpace(reply))) {
	case ModeWeb:
		return ModeWeb
	case ModeRAG:
		return ModeRAG
	case ModeDeepResearch:
		return ModeDeepResearch
	case ModeLLM:
		return ModeLLM
	default:
		return ModeLLM
	}
}

func containsAny(q string, words []string) bool {
	q = strings.ToLower(q)
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func isGreeting(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	for _, g := range greetings {
		if q == g {
			return true
		}
	}
	return false
}

func hasDefinitionPrefix(q string) bool {
	q = strings.ToLower(q)
	for _, p := range definitionPrefixes {
		if strings.HasPrefix(q, p) {
			return true
		}
	}
	return false
}

func hasCapitalizedWord(q string) bool {
	for _, w := range strings.Fields(q) {
		r := []rune(w)
		if len(r) > 0 && unicode.IsUpper(r[0]) {
			return true
		}
	}
	return false
}
