package pipeline

import (
	"answerhub/internal/history"
	"answerhub/internal/workspace"
)

// Source is a cited provenance entry. Document sources carry no URL.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Link is a related page surfaced alongside the answer.
type Link struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Image is a visual result.
type Image struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	ContentURL   string `json:"content_url"`
}

// Page is fetched web content used as answer context.
type Page struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// State is the shared blackboard a pipeline's stages read and write. Each
// run owns its State; stages never share state across runs.
type State struct {
	// Inputs
	Query       string
	WorkspaceID string
	History     []history.Message

	// Working fields
	SubQuestions     []string
	Evidence         []string
	DraftAnswers     []string
	Pages            []Page
	DocHits          []workspace.Hit
	Context          string
	FileContext      string
	WebContext       string
	KnowledgeContext string
	FileSources      []Source
	WebSources       []Source
	Gates            Gates

	// Outputs
	Answer    string
	Sources   []Source
	Links     []Link
	Images    []Image
	Followups []string
}
