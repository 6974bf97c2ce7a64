package image_search

import (
	"context"
	"errors"

	"answerhub/tools/image_search/models"
	"answerhub/tools/image_search/tavily"
)

type ImageSearcher interface {
	SearchImages(ctx context.Context, q string, k int) ([]models.Image, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewImageSearcher(provider Provider, apiKey string) (ImageSearcher, error) {
	switch provider {
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
