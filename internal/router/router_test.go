package router

import (
	"context"
	"errors"
	"testing"

	"answerhub/provider"
)

// scriptedLLM returns a fixed reply for every chat completion.
type scriptedLLM struct {
	reply string
	err   error
}

func (s scriptedLLM) ChatCompletion(ctx context.Context, messages []provider.Message) (string, error) {
	return s.reply, s.err
}

func (s scriptedLLM) StreamChatCompletion(ctx context.Context, messages []provider.Message, fn func(string) error) error {
	return s.err
}

func (s scriptedLLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func TestRouteFastRules(t *testing.T) {
	// The classifier must never be consulted for rule-claimed queries.
	r := New(scriptedLLM{err: errors.New("classifier should not run")}, nil)
	ctx := context.Background()

	cases := []struct {
		query string
		want  Mode
	}{
		{"hello", ModeLLM},
		{"  Hi There  ", ModeLLM},
		{"show me a picture of saturn", ModeImage},
		{"what is the latest bitcoin price", ModeWeb}, // realtime outranks definition
		{"who is the president of france", ModeWeb},
		{"how does claude compare to gpt", ModeWeb}, // ai model outranks deep
		{"Tesla", ModeWeb},
		{"Golden Gate", ModeWeb},
		{"advantages and disadvantages of remote work", ModeDeepResearch},
		{"what is polymorphism", ModeRAG},
		{"explain quicksort", ModeRAG},
	}
	for _, tc := range cases {
		if got := r.Route(ctx, tc.query); got != tc.want {
			t.Errorf("Route(%q) = %s, want %s", tc.query, got, tc.want)
		}
	}
}

func TestRouteClassifierFallback(t *testing.T) {
	ctx := context.Background()
	q := "write me a short poem about autumn"

	if got := New(scriptedLLM{reply: "deep_research"}, nil).Route(ctx, q); got != ModeDeepResearch {
		t.Errorf("classifier reply ignored: got %s", got)
	}
	if got := New(scriptedLLM{reply: "  WEB \n"}, nil).Route(ctx, q); got != ModeWeb {
		t.Errorf("classifier reply not normalized: got %s", got)
	}
	// Malformed or failing classifier output falls back to llm.
	if got := New(scriptedLLM{reply: "definitely the web one"}, nil).Route(ctx, q); got != ModeLLM {
		t.Errorf("malformed reply should fall back to llm, got %s", got)
	}
	if got := New(scriptedLLM{err: errors.New("boom")}, nil).Route(ctx, q); got != ModeLLM {
		t.Errorf("classifier error should fall back to llm, got %s", got)
	}
	if got := New(nil, nil).Route(ctx, q); got != ModeLLM {
		t.Errorf("missing classifier should fall back to llm, got %s", got)
	}
}

func TestRoutePrecedenceGreetingFirst(t *testing.T) {
	// A bare greeting stays llm even though "hi" is capitalized elsewhere.
	r := New(scriptedLLM{reply: "web"}, nil)
	if got := r.Route(context.Background(), "hey"); got != ModeLLM {
		t.Errorf("greeting should route llm, got %s", got)
	}
}
