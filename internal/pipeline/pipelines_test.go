package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"answerhub/config"
	"answerhub/internal/workspace"
	fetchmodels "answerhub/tools/web_fetch/models"
	searchmodels "answerhub/tools/web_search/models"
)

func testManager(t *testing.T) *workspace.Manager {
	t.Helper()
	mgr, err := workspace.NewManager(config.WorkspaceConfig{
		DataDir:      t.TempDir(),
		ChunkSize:    400,
		ChunkOverlap: 80,
	}, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return mgr
}

func TestWebSearchPipeline(t *testing.T) {
	llm := &fakeLLM{replies: []string{"The answer is here [1].", "- dig deeper\n- compare results"}}
	searcher := fakeSearcher{results: []searchmodels.Result{
		{Title: "First", URL: "https://site.test/one"},
		{Title: "Second", URL: "https://site.test/two"},
	}}
	fetcher := fakeFetcher{pages: map[string]fetchmodels.Result{
		"https://site.test/one": {URL: "https://site.test/one", Title: "First", Text: "Content one.", Status: 200},
		"https://site.test/two": {URL: "https://site.test/two", Title: "Second", Text: "Content two.", Status: 200},
	}}

	p := NewWebSearch(Deps{LLM: llm, Search: searcher, Fetch: fetcher})
	st := &State{Query: "what happened"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}

	if st.Answer != "The answer is here [1]." {
		t.Errorf("answer = %q", st.Answer)
	}
	want := []Source{
		{Title: "First", URL: "https://site.test/one"},
		{Title: "Second", URL: "https://site.test/two"},
	}
	if !reflect.DeepEqual(st.Sources, want) {
		t.Errorf("sources = %v, want %v", st.Sources, want)
	}
	if len(st.Links) != 2 {
		t.Errorf("links = %v", st.Links)
	}
	if !strings.Contains(st.Context, "[1] First:") || !strings.Contains(st.Context, "[2] Second:") {
		t.Errorf("context missing numbered blocks: %q", st.Context)
	}
	if got := []string{"dig deeper", "compare results"}; !reflect.DeepEqual(st.Followups, got) {
		t.Errorf("followups = %v", st.Followups)
	}
}

func TestWebSearchPipelineDegradedSearch(t *testing.T) {
	llm := &fakeLLM{replies: []string{"From general knowledge.", "- anything else"}}
	searcher := fakeSearcher{err: context.DeadlineExceeded}

	p := NewWebSearch(Deps{LLM: llm, Search: searcher, Fetch: fakeFetcher{}})
	st := &State{Query: "what happened"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Answer != "From general knowledge." {
		t.Errorf("answer = %q", st.Answer)
	}
	if len(st.Sources) != 0 {
		t.Errorf("expected no sources, got %v", st.Sources)
	}
}

func TestDocumentOnlyWithoutDocuments(t *testing.T) {
	p := NewDocumentOnly(Deps{
		LLM:        &fakeLLM{replies: []string{"should never be asked"}},
		Workspaces: testManager(t),
	})
	st := &State{Query: "what does my report say"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Answer != NoDocumentsMessage {
		t.Errorf("answer = %q, want %q", st.Answer, NoDocumentsMessage)
	}
	if st.Sources == nil || len(st.Sources) != 0 {
		t.Errorf("sources = %v, want empty", st.Sources)
	}
	if st.Followups == nil || len(st.Followups) != 0 {
		t.Errorf("followups = %v, want empty", st.Followups)
	}
	if st.WorkspaceID == "" {
		t.Error("expected a minted workspace id")
	}
}

func TestDocumentOnlyAnswersFromUploads(t *testing.T) {
	mgr := testManager(t)
	ws, err := mgr.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	content := []byte("The quarterly report shows revenue grew twelve percent.")
	if _, err := ws.AddDocument(context.Background(), "report.txt", content); err != nil {
		t.Fatalf("add document: %v", err)
	}

	llm := &fakeLLM{replies: []string{
		"According to your documents, revenue grew twelve percent.",
		"- what drove the growth",
	}}
	p := NewDocumentOnly(Deps{LLM: llm, Workspaces: mgr})
	st := &State{Query: "how did revenue change", WorkspaceID: ws.ID}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(st.Answer, "revenue grew") {
		t.Errorf("answer = %q", st.Answer)
	}
	if len(st.Sources) != 1 || st.Sources[0].Title != "report.txt" || st.Sources[0].URL != "" {
		t.Errorf("sources = %v", st.Sources)
	}
}

func TestSummarizeURLBranch(t *testing.T) {
	url := "https://example.org/article"
	fetcher := fakeFetcher{pages: map[string]fetchmodels.Result{
		url: {URL: url, Title: "Article", Text: strings.Repeat("Long body text. ", 40), Status: 200},
	}}
	llm := &fakeLLM{replies: []string{"A tight summary.", "- read the original"}}

	p := NewSummarize(Deps{LLM: llm, Fetch: fetcher})
	st := &State{Query: url}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Answer != "A tight summary." {
		t.Errorf("answer = %q", st.Answer)
	}
	want := []Source{{Title: "Source URL", URL: url}}
	if !reflect.DeepEqual(st.Sources, want) {
		t.Errorf("sources = %v, want %v", st.Sources, want)
	}
	if len(st.Links) != 1 || st.Links[0].URL != url || len(st.Links[0].Snippet) > summarizeURLSnippet {
		t.Errorf("links = %v", st.Links)
	}
}

func TestSummarizeUnfetchableURL(t *testing.T) {
	llm := &fakeLLM{replies: []string{"- try another link"}}
	p := NewSummarize(Deps{LLM: llm, Fetch: fakeFetcher{}})
	st := &State{Query: "https://example.org/missing"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Answer != summarizeEmptyAnswer {
		t.Errorf("answer = %q, want %q", st.Answer, summarizeEmptyAnswer)
	}
}

func TestParseSubQuestions(t *testing.T) {
	reply := `Here is the plan:
1. What is the history of the topic?
2) How has it evolved recently?
3. What do experts predict next?
not a numbered line
10. Does double-digit numbering work?`
	got := parseSubQuestions(reply)
	want := []string{
		"What is the history of the topic?",
		"How has it evolved recently?",
		"What do experts predict next?",
		"Does double-digit numbering work?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSubQuestions = %v, want %v", got, want)
	}
}

func TestGenerateFollowups(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"Sure, here are some ideas:\n- first question\n• second question\nplain line\n- third\n- fourth\n- fifth",
	}}
	got := GenerateFollowups(context.Background(), llm, "q", "a")
	want := []string{"first question", "second question", "third", "fourth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("followups = %v, want %v", got, want)
	}

	if got := GenerateFollowups(context.Background(), nil, "q", "a"); got != nil {
		t.Errorf("nil llm should yield nil, got %v", got)
	}

	broken := &fakeLLM{err: context.DeadlineExceeded}
	if got := GenerateFollowups(context.Background(), broken, "q", "a"); got != nil {
		t.Errorf("llm failure should yield nil, got %v", got)
	}
}

func TestDeepResearchPipeline(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"1. What caused the shift?\n2. Who was affected?",
		"The shift was caused by new regulation.",
		"Mostly small producers were affected.",
		"## Overview\nRegulation drove the shift [1], hitting small producers [2].\n\n## Conclusion\nDone.",
	}}
	searcher := fakeSearcher{results: []searchmodels.Result{
		{Title: "Regulation Brief", URL: "https://site.test/reg"},
		{Title: "Producer Survey", URL: "https://site.test/survey"},
	}}
	fetcher := fakeFetcher{pages: map[string]fetchmodels.Result{
		"https://site.test/reg":    {URL: "https://site.test/reg", Title: "Regulation Brief", Text: "Rules changed last year.", Status: 200},
		"https://site.test/survey": {URL: "https://site.test/survey", Title: "Producer Survey", Text: "Producers report impact.", Status: 200},
	}}

	p := NewDeepResearch(Deps{LLM: llm, Search: searcher, Fetch: fetcher})
	st := &State{Query: "what changed in the market"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}

	wantSubs := []string{"What caused the shift?", "Who was affected?"}
	if !reflect.DeepEqual(st.SubQuestions, wantSubs) {
		t.Errorf("sub-questions = %v, want %v", st.SubQuestions, wantSubs)
	}
	if len(st.DraftAnswers) != 2 || !strings.Contains(st.DraftAnswers[0], "Sub-question: What caused the shift?") {
		t.Errorf("draft answers = %v", st.DraftAnswers)
	}
	// two pages per sub-question, so evidence carries four entries
	if len(st.Evidence) != 4 {
		t.Errorf("evidence entries = %d, want 4", len(st.Evidence))
	}
	if !strings.Contains(st.Answer, "## Overview") {
		t.Errorf("answer = %q", st.Answer)
	}
	wantSources := []Source{
		{Title: "Regulation Brief", URL: "https://site.test/reg"},
		{Title: "Producer Survey", URL: "https://site.test/survey"},
	}
	if !reflect.DeepEqual(st.Sources, wantSources) {
		t.Errorf("sources = %v, want %v", st.Sources, wantSources)
	}
}

func TestDeepResearchUnparseablePlanFallsBackToQuery(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"I would rather not enumerate anything.",
		"A direct draft.",
		"## Overview\nNothing cited.",
	}}
	p := NewDeepResearch(Deps{LLM: llm, Search: fakeSearcher{}, Fetch: fakeFetcher{}})
	st := &State{Query: "a single narrow question"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(st.SubQuestions, []string{"a single narrow question"}) {
		t.Errorf("sub-questions = %v", st.SubQuestions)
	}
	if len(st.Sources) != 0 {
		t.Errorf("sources = %v, want none", st.Sources)
	}
}

func TestAnalysisPipeline(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"## Executive Summary\nAdoption doubled last year [1].",
		"- regional breakdown\n- cost trends",
	}}
	searcher := fakeSearcher{results: []searchmodels.Result{
		{Title: "Adoption Report", URL: "https://site.test/adoption"},
		{Title: "Cost Study", URL: "https://site.test/cost"},
	}}
	fetcher := fakeFetcher{pages: map[string]fetchmodels.Result{
		"https://site.test/adoption": {URL: "https://site.test/adoption", Title: "Adoption Report", Text: "Adoption figures rose sharply.", Status: 200},
		"https://site.test/cost":     {URL: "https://site.test/cost", Title: "Cost Study", Text: "Costs fell across regions.", Status: 200},
	}}

	p := NewAnalysis(Deps{LLM: llm, Search: searcher, Fetch: fetcher})
	st := &State{Query: "analyze solar adoption"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(st.Answer, "## Executive Summary") {
		t.Errorf("answer = %q", st.Answer)
	}
	if !strings.Contains(st.Context, "[Adoption Report]:") || !strings.Contains(st.Context, "[Cost Study]:") {
		t.Errorf("context missing titled blocks: %q", st.Context)
	}
	wantSources := []Source{
		{Title: "Adoption Report", URL: "https://site.test/adoption"},
		{Title: "Cost Study", URL: "https://site.test/cost"},
	}
	if !reflect.DeepEqual(st.Sources, wantSources) {
		t.Errorf("sources = %v, want %v", st.Sources, wantSources)
	}
	if len(st.Links) != 2 {
		t.Errorf("links = %v", st.Links)
	}
	if got := []string{"regional breakdown", "cost trends"}; !reflect.DeepEqual(st.Followups, got) {
		t.Errorf("followups = %v", st.Followups)
	}
}

func TestAnalysisPipelineWithoutWebData(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"Analysis from general knowledge only.",
		"- gather primary data",
	}}
	p := NewAnalysis(Deps{LLM: llm, Search: fakeSearcher{err: context.DeadlineExceeded}, Fetch: fakeFetcher{}})
	st := &State{Query: "analyze the trend"}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Answer != "Analysis from general knowledge only." {
		t.Errorf("answer = %q", st.Answer)
	}
	if len(st.Sources) != 0 {
		t.Errorf("sources = %v, want none", st.Sources)
	}
}

func TestDocumentOnlyReranksRetrievedChunks(t *testing.T) {
	mgr := testManager(t)
	ws, err := mgr.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "Section %d covers revenue performance in detail. ", i)
	}
	if _, err := ws.AddDocument(context.Background(), "annual.txt", []byte(sb.String())); err != nil {
		t.Fatalf("add document: %v", err)
	}

	llm := &fakeLLM{replies: []string{
		"According to your documents, revenue performance is covered throughout.",
		"- which section matters most",
	}}
	p := NewDocumentOnly(Deps{LLM: llm, Workspaces: mgr})
	st := &State{Query: "revenue performance", WorkspaceID: ws.ID}
	if err := p.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(st.DocHits) == 0 || len(st.DocHits) > 4 {
		t.Errorf("doc hits = %d, want 1..4", len(st.DocHits))
	}
	if strings.Contains(st.Context, "[DOC 5]") {
		t.Errorf("context carries more than four chunks: %q", st.Context)
	}
}
