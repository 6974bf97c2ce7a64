package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"answerhub/internal/history"
	"answerhub/internal/pipeline"
	"answerhub/internal/router"
	"answerhub/provider"
)

const (
	historyWindow    = 12
	imageResultCount = 6
)

var (
	namePattern    = regexp.MustCompile(`(?i)\b(?:i am|my name is)\s+([A-Za-z]+)`)
	nameAskPattern = regexp.MustCompile(`(?i)\bwhat('?s| is) my name\b`)
)

// chat is the auto endpoint: route the message and dispatch the pipeline
// the mode maps to.
func (s *Server) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	ctx := c.Request().Context()

	ws, err := s.workspaces.Get(ctx, req.WorkspaceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := s.history.Append(ctx, ws.ID, history.Message{Role: "user", Content: req.Message}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}

	// profile memory short-circuits routing
	if resp, ok := s.profileShortcut(ws.ID, req.Message); ok {
		if err := s.history.Append(ctx, ws.ID, history.Message{Role: "assistant", Content: resp.Answer}); err != nil {
			s.logger.Printf("history append failed: %v", err)
		}
		return c.JSON(http.StatusOK, resp)
	}

	mode := s.router.Route(ctx, req.Message)

	var resp ChatResponse
	switch mode {
	case router.ModeLLM:
		resp = s.directAnswer(c, ws.ID, req.Message)
	case router.ModeImage:
		resp = s.imageAnswer(c, ws.ID, req.Message)
	case router.ModeWeb:
		resp = s.runPipeline(c, pipelineWebSearch, ws.ID, req.Message)
	case router.ModeRAG:
		resp = s.runPipeline(c, pipelineAgentic, ws.ID, req.Message)
	case router.ModeDeepResearch:
		resp = s.runPipeline(c, pipelineDeepResearch, ws.ID, req.Message)
		if len(resp.Followups) == 0 && resp.Answer != failureAnswer {
			resp.Followups = pipeline.GenerateFollowups(ctx, s.llm, req.Message, resp.Answer)
			if resp.Followups == nil {
				resp.Followups = []string{}
			}
		}
	default:
		resp = s.directAnswer(c, ws.ID, req.Message)
	}
	resp.DefaultTab = defaultTab(mode, resp)

	if err := s.history.Append(ctx, ws.ID, history.Message{Role: "assistant", Content: resp.Answer}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// chatStream streams the direct LLM answer as server-sent events. Modes
// other than llm fall back to a single final event with the full envelope.
func (s *Server) chatStream(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	ctx := c.Request().Context()

	ws, err := s.workspaces.Get(ctx, req.WorkspaceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := s.history.Append(ctx, ws.ID, history.Message{Role: "user", Content: req.Message}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	emit := func(event, data string) error {
		if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	if resp, ok := s.profileShortcut(ws.ID, req.Message); ok {
		if err := s.history.Append(ctx, ws.ID, history.Message{Role: "assistant", Content: resp.Answer}); err != nil {
			s.logger.Printf("history append failed: %v", err)
		}
		payload, _ := json.Marshal(resp)
		return emit("final", string(payload))
	}

	mode := s.router.Route(ctx, req.Message)
	if mode != router.ModeLLM {
		resp := s.dispatchForStream(c, mode, ws.ID, req.Message)
		if err := s.history.Append(ctx, ws.ID, history.Message{Role: "assistant", Content: resp.Answer}); err != nil {
			s.logger.Printf("history append failed: %v", err)
		}
		payload, _ := json.Marshal(resp)
		return emit("final", string(payload))
	}

	messages := s.conversation(ctx, ws.ID, req.Message, chatSystemPrompt(s.profileName(ws.ID)))
	var full strings.Builder
	streamErr := s.llm.StreamChatCompletion(ctx, messages, func(delta string) error {
		full.WriteString(delta)
		// JSON-encode so multi-line deltas survive SSE framing.
		b, _ := json.Marshal(delta)
		return emit("delta", string(b))
	})
	if streamErr != nil {
		s.logger.Printf("stream failed: %v", streamErr)
		if full.Len() == 0 {
			return emit("error", failureAnswer)
		}
	}

	answer := full.String()
	if err := s.history.Append(ctx, ws.ID, history.Message{Role: "assistant", Content: answer}); err != nil {
		s.logger.Printf("history append failed: %v", err)
	}
	resp := ChatResponse{
		Answer:      answer,
		Sources:     []pipeline.Source{},
		Links:       []pipeline.Link{},
		Images:      []pipeline.Image{},
		Followups:   pipeline.GenerateFollowups(ctx, s.llm, req.Message, answer),
		DefaultTab:  "answer",
		WorkspaceID: ws.ID,
	}
	if resp.Followups == nil {
		resp.Followups = []string{}
	}
	payload, _ := json.Marshal(resp)
	return emit("final", string(payload))
}

func (s *Server) dispatchForStream(c echo.Context, mode router.Mode, workspaceID, message string) ChatResponse {
	var resp ChatResponse
	switch mode {
	case router.ModeImage:
		resp = s.imageAnswer(c, workspaceID, message)
	case router.ModeWeb:
		resp = s.runPipeline(c, pipelineWebSearch, workspaceID, message)
	case router.ModeRAG:
		resp = s.runPipeline(c, pipelineAgentic, workspaceID, message)
	case router.ModeDeepResearch:
		resp = s.runPipeline(c, pipelineDeepResearch, workspaceID, message)
	default:
		resp = s.directAnswer(c, workspaceID, message)
	}
	resp.DefaultTab = defaultTab(mode, resp)
	return resp
}

// runPipeline executes a named pipeline and assembles its final state.
// Every pipeline except agentic gets images for the original query
// attached afterwards; agentic gates its own image agent.
func (s *Server) runPipeline(c echo.Context, name, workspaceID, message string) ChatResponse {
	p, ok := s.pipelines[name]
	if !ok {
		s.logger.Printf("unknown pipeline %q", name)
		return failureResponse(workspaceID)
	}
	st := &pipeline.State{Query: message, WorkspaceID: workspaceID}
	if err := p.Run(c.Request().Context(), st); err != nil {
		s.logger.Printf("pipeline %s failed: %v", name, err)
		return failureResponse(st.WorkspaceID)
	}
	resp := assemble(st)
	if name != pipelineAgentic {
		s.attachImages(c.Request().Context(), message, &resp)
	}
	return resp
}

// attachImages decorates a response with image results for the query.
// Failures degrade to an empty image set, never an error.
func (s *Server) attachImages(ctx context.Context, query string, resp *ChatResponse) {
	if s.images == nil || len(resp.Images) > 0 {
		return
	}
	found, err := s.images.SearchImages(ctx, query, imageResultCount)
	if err != nil {
		s.tel.AdapterError("image_search")
		s.logger.Printf("image search failed: %v", err)
		return
	}
	for _, img := range found {
		resp.Images = append(resp.Images, pipeline.Image{
			Title:        img.Title,
			ThumbnailURL: img.ThumbnailURL,
			ContentURL:   img.ContentURL,
		})
	}
}

// directAnswer is the conversational llm mode: recent history plus the
// new message, no retrieval.
func (s *Server) directAnswer(c echo.Context, workspaceID, message string) ChatResponse {
	ctx := c.Request().Context()
	answer, err := s.llm.ChatCompletion(ctx, s.conversation(ctx, workspaceID, message, chatSystemPrompt(s.profileName(workspaceID))))
	if err != nil {
		s.logger.Printf("chat completion failed: %v", err)
		return failureResponse(workspaceID)
	}
	resp := ChatResponse{
		Answer:      answer,
		Sources:     []pipeline.Source{},
		Links:       []pipeline.Link{},
		Images:      []pipeline.Image{},
		Followups:   pipeline.GenerateFollowups(ctx, s.llm, message, answer),
		WorkspaceID: workspaceID,
	}
	if resp.Followups == nil {
		resp.Followups = []string{}
	}
	return resp
}

// imageAnswer pairs an image search with a short textual answer.
func (s *Server) imageAnswer(c echo.Context, workspaceID, message string) ChatResponse {
	resp := s.directAnswer(c, workspaceID, message)
	s.attachImages(c.Request().Context(), message, &resp)
	return resp
}

// conversation builds the LLM message list from the recent transcript.
// The incoming message is already in the store, so only the trailing
// occurrence is skipped; earlier identical turns stay in context.
func (s *Server) conversation(ctx context.Context, workspaceID, message, system string) []provider.Message {
	messages := []provider.Message{{Role: "system", Content: system}}
	recent, err := s.history.Recent(ctx, workspaceID, historyWindow)
	if err != nil {
		s.logger.Printf("history read failed: %v", err)
	}
	for i, m := range recent {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		if i == len(recent)-1 && m.Role == "user" && m.Content == message {
			continue
		}
		messages = append(messages, provider.Message{Role: m.Role, Content: m.Content})
	}
	return append(messages, provider.Message{Role: "user", Content: message})
}

func chatSystemPrompt(profileName string) string {
	prompt := "You are a helpful, knowledgeable assistant. Answer conversationally and concisely."
	if profileName != "" {
		prompt += " The user's name is " + profileName + "."
	}
	return prompt
}

// profileShortcut handles self-introductions and name recall without
// touching the router.
func (s *Server) profileShortcut(workspaceID, message string) (ChatResponse, bool) {
	if m := namePattern.FindStringSubmatch(message); m != nil {
		name := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
		if ws, ok := s.workspaces.Lookup(workspaceID); ok {
			ws.SetProfileName(name)
		}
		return profileResponse(workspaceID, "Nice to meet you, "+name+"! How can I help you today?"), true
	}
	if nameAskPattern.MatchString(message) {
		if name := s.profileName(workspaceID); name != "" {
			return profileResponse(workspaceID, "Your name is "+name+"."), true
		}
		return profileResponse(workspaceID, "I don't know your name yet. You can tell me with \"my name is ...\"."), true
	}
	return ChatResponse{}, false
}

func profileResponse(workspaceID, answer string) ChatResponse {
	return ChatResponse{
		Answer:      answer,
		Sources:     []pipeline.Source{},
		Links:       []pipeline.Link{},
		Images:      []pipeline.Image{},
		Followups:   []string{},
		DefaultTab:  "answer",
		WorkspaceID: workspaceID,
	}
}

func (s *Server) profileName(workspaceID string) string {
	if ws, ok := s.workspaces.Lookup(workspaceID); ok {
		return ws.ProfileName()
	}
	return ""
}
