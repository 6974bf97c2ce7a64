package server

import (
	"answerhub/internal/history"
	"answerhub/internal/pipeline"
	"answerhub/internal/workspace"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// ChatRequest is the payload shared by the chat and mode endpoints.
type ChatRequest struct {
	Message     string `json:"message"`
	WorkspaceID string `json:"workspace_id"`
}

// ChatResponse is the unified answer envelope.
type ChatResponse struct {
	Answer      string            `json:"answer"`
	Sources     []pipeline.Source `json:"sources"`
	Links       []pipeline.Link   `json:"links"`
	Images      []pipeline.Image  `json:"images"`
	Followups   []string          `json:"followups"`
	DefaultTab  string            `json:"default_tab,omitempty"`
	WorkspaceID string            `json:"workspace_id"`
}

// TokenRequest asks for a workspace-scoped bearer token.
type TokenRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token       string `json:"token"`
	WorkspaceID string `json:"workspace_id"`
}

// FileListResponse lists a workspace's uploaded documents.
type FileListResponse struct {
	WorkspaceID string               `json:"workspace_id"`
	Files       []workspace.FileInfo `json:"files"`
}

// HistoryResponse returns a workspace's chat transcript.
type HistoryResponse struct {
	WorkspaceID string            `json:"workspace_id"`
	Messages    []history.Message `json:"messages"`
}
