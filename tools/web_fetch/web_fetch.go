package web_fetch

import (
	"context"
	"errors"
	"time"

	"answerhub/tools/web_fetch/chromedp"
	"answerhub/tools/web_fetch/httpfetch"
	"answerhub/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 25 * time.Second
	MaxCharsDefault = 20000
)

// WebFetcher downloads a page and extracts readable text. Failures surface
// as a degraded Result with empty text, not an error.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

func NewWebFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch fetcherType {
	case HTTPFetcherType, "":
		return &httpfetch.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, errors.New("unsupported fetcher type")
	}
}
