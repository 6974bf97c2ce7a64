package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"answerhub/internal/history"
	"answerhub/internal/pipeline"
)

// beginTurn mints or loads the workspace and records the user turn.
func (s *Server) beginTurn(c echo.Context, req *ChatRequest) error {
	ctx := c.Request().Context()
	ws, err := s.workspaces.Get(ctx, req.WorkspaceID)
	if err != nil {
		return err
	}
	req.WorkspaceID = ws.ID
	if err := s.history.Append(ctx, ws.ID, history.Message{Role: "user", Content: req.Message}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}
	return nil
}

// endTurn records the assistant turn.
func (s *Server) endTurn(ctx context.Context, workspaceID, answer string) {
	if err := s.history.Append(ctx, workspaceID, history.Message{Role: "assistant", Content: answer}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}
}

// modeHandler exposes a single pipeline as a dedicated endpoint.
func (s *Server) modeHandler(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req ChatRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if strings.TrimSpace(req.Message) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "message is required")
		}
		if err := s.beginTurn(c, &req); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp := s.runPipeline(c, name, req.WorkspaceID, req.Message)
		s.endTurn(c.Request().Context(), resp.WorkspaceID, resp.Answer)
		return c.JSON(http.StatusOK, resp)
	}
}

// deepResearch runs the research pipeline; followups come from the
// endpoint since the pipeline spends its budget on the report itself.
func (s *Server) deepResearch(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if err := s.beginTurn(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := s.runPipeline(c, pipelineDeepResearch, req.WorkspaceID, req.Message)
	if resp.Answer != failureAnswer && len(resp.Followups) == 0 {
		resp.Followups = pipeline.GenerateFollowups(c.Request().Context(), s.llm, req.Message, resp.Answer)
		if resp.Followups == nil {
			resp.Followups = []string{}
		}
	}
	s.endTurn(c.Request().Context(), resp.WorkspaceID, resp.Answer)
	return c.JSON(http.StatusOK, resp)
}

// summarize prefers uploaded documents; URLs and topics go through the
// summarization pipeline.
func (s *Server) summarize(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if err := s.beginTurn(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	query := strings.TrimSpace(req.Message)

	var resp ChatResponse
	if ws, ok := s.workspaces.Lookup(req.WorkspaceID); ok &&
		!strings.HasPrefix(query, "http") && ws.HasDocuments() {
		resp = s.summarizeDocuments(c, ws.ID, query)
	} else {
		resp = s.runPipeline(c, pipelineSummarize, req.WorkspaceID, query)
	}
	s.endTurn(c.Request().Context(), resp.WorkspaceID, resp.Answer)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) summarizeDocuments(c echo.Context, workspaceID, query string) ChatResponse {
	ctx := c.Request().Context()
	ws, ok := s.workspaces.Lookup(workspaceID)
	if !ok {
		return failureResponse(workspaceID)
	}
	hits, err := ws.Retrieve(ctx, query, 8)
	if err != nil || len(hits) == 0 {
		s.tel.AdapterError("doc_retrieve")
		return s.runPipeline(c, pipelineSummarize, workspaceID, query)
	}
	var parts []string
	seen := map[string]struct{}{}
	sources := []pipeline.Source{}
	for _, h := range hits {
		parts = append(parts, h.Text)
		src := h.Source
		if src == "" {
			src = "Document"
		}
		if _, dup := seen[src]; !dup {
			seen[src] = struct{}{}
			sources = append(sources, pipeline.Source{Title: src, URL: ""})
		}
	}
	summary, err := pipeline.Summarize(ctx, s.llm, strings.Join(parts, "\n\n"), 300)
	if err != nil {
		s.logger.Printf("document summarization failed: %v", err)
		return failureResponse(workspaceID)
	}
	resp := ChatResponse{
		Answer:      summary,
		Sources:     sources,
		Links:       []pipeline.Link{},
		Images:      []pipeline.Image{},
		Followups:   pipeline.GenerateFollowups(ctx, s.llm, query, summary),
		WorkspaceID: workspaceID,
	}
	if resp.Followups == nil {
		resp.Followups = []string{}
	}
	return resp
}

var personaPrompts = map[string]string{
	"focus":   "You are a focused assistant. Answer directly with the single most relevant point. No preamble, no tangents.",
	"writing": "You are a writing assistant. Improve clarity, tone and structure. Offer a revised version followed by brief notes on what changed.",
	"math":    "You are a math tutor. Work through problems step by step, showing intermediate results, and state the final answer clearly.",
	"code":    "You are a senior software engineer. Provide working code with a short explanation. Call out edge cases and pitfalls.",
}

// persona answers with a specialized system prompt over the recent
// conversation instead of retrieval.
func (s *Server) persona(name string) echo.HandlerFunc {
	prompt := personaPrompts[name]
	return func(c echo.Context) error {
		var req ChatRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if strings.TrimSpace(req.Message) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "message is required")
		}
		if err := s.beginTurn(c, &req); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		ctx := c.Request().Context()

		answer, err := s.llm.ChatCompletion(ctx, s.conversation(ctx, req.WorkspaceID, req.Message, prompt))
		if err != nil {
			s.logger.Printf("persona completion failed: %v", err)
			resp := failureResponse(req.WorkspaceID)
			s.endTurn(ctx, req.WorkspaceID, resp.Answer)
			return c.JSON(http.StatusOK, resp)
		}
		resp := ChatResponse{
			Answer:      answer,
			Sources:     []pipeline.Source{},
			Links:       []pipeline.Link{},
			Images:      []pipeline.Image{},
			Followups:   []string{},
			WorkspaceID: req.WorkspaceID,
		}
		s.endTurn(ctx, req.WorkspaceID, answer)
		return c.JSON(http.StatusOK, resp)
	}
}
