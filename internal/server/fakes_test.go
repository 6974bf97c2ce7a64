package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"answerhub/internal/pipeline"
	"answerhub/provider"
	isearch "answerhub/tools/image_search/models"
)

// stubLLM replies from a queue, falling back to the last entry.
type stubLLM struct {
	replies []string
	calls   int
	err     error
}

func (f *stubLLM) ChatCompletion(ctx context.Context, messages []provider.Message) (string, error) {
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

func (f *stubLLM) StreamChatCompletion(ctx context.Context, messages []provider.Message, fn func(string) error) error {
	reply, err := f.ChatCompletion(ctx, messages)
	if err != nil {
		return err
	}
	return fn(reply)
}

func (f *stubLLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

// stubImages counts invocations so tests can assert whether a mode
// consulted the image adapter at all.
type stubImages struct {
	images []isearch.Image
	calls  int
	err    error
}

func (f *stubImages) SearchImages(ctx context.Context, q string, k int) ([]isearch.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.images) {
		return f.images[:k], nil
	}
	return f.images, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// answerStage builds a single-stage pipeline that emits a fixed answer.
func answerStage(name, answer string) *pipeline.Pipeline {
	return pipeline.NewPipeline(name, nil, pipeline.Stage{
		Name: "answer",
		Run: func(ctx context.Context, st *pipeline.State) error {
			st.Answer = answer
			return nil
		},
	})
}

// postJSON builds an echo context carrying a JSON chat request.
func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
