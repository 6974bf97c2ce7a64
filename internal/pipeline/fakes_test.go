package pipeline

import (
	"context"
	"errors"
	"strings"

	isearch "answerhub/tools/image_search/models"
	fetchmodels "answerhub/tools/web_fetch/models"
	searchmodels "answerhub/tools/web_search/models"

	"answerhub/provider"
)

// fakeLLM replies from a queue, falling back to the last entry.
type fakeLLM struct {
	replies []string
	calls   int
	err     error
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, messages []provider.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	i := f.calls - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

func (f *fakeLLM) StreamChatCompletion(ctx context.Context, messages []provider.Message, fn func(string) error) error {
	reply, err := f.ChatCompletion(ctx, messages)
	if err != nil {
		return err
	}
	return fn(reply)
}

func (f *fakeLLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

// fakeSearcher returns fixed results for every query.
type fakeSearcher struct {
	results []searchmodels.Result
	err     error
}

func (f fakeSearcher) Search(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

// fakeFetcher serves page text by URL; unknown URLs come back empty.
type fakeFetcher struct {
	pages map[string]fetchmodels.Result
}

func (f fakeFetcher) Exec(ctx context.Context, url string) (fetchmodels.Result, error) {
	if strings.TrimSpace(url) == "" {
		return fetchmodels.Result{}, errors.New("invalid url")
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return fetchmodels.Result{URL: url, Status: 404}, nil
}

type fakeImageSearcher struct {
	images []isearch.Image
}

func (f fakeImageSearcher) SearchImages(ctx context.Context, q string, k int) ([]isearch.Image, error) {
	if k < len(f.images) {
		return f.images[:k], nil
	}
	return f.images, nil
}
