package server

import (
	"answerhub/internal/pipeline"
	"answerhub/internal/router"
)

const failureAnswer = "Something went wrong while answering. Please try again."

// assemble builds the response envelope from final pipeline state. Nil
// slices become empty ones so clients always see arrays.
func assemble(st *pipeline.State) ChatResponse {
	resp := ChatResponse{
		Answer:      st.Answer,
		Sources:     st.Sources,
		Links:       st.Links,
		Images:      st.Images,
		Followups:   st.Followups,
		WorkspaceID: st.WorkspaceID,
	}
	if resp.Sources == nil {
		resp.Sources = []pipeline.Source{}
	}
	if resp.Links == nil {
		resp.Links = []pipeline.Link{}
	}
	if resp.Images == nil {
		resp.Images = []pipeline.Image{}
	}
	if resp.Followups == nil {
		resp.Followups = []string{}
	}
	return resp
}

// defaultTab picks the client tab to open for an auto-routed answer.
func defaultTab(mode router.Mode, resp ChatResponse) string {
	switch {
	case mode == router.ModeImage && len(resp.Images) > 0:
		return "images"
	case mode == router.ModeWeb && len(resp.Links) > 0:
		return "links"
	default:
		return "answer"
	}
}

// failureResponse keeps the envelope shape even when a pipeline fails.
func failureResponse(workspaceID string) ChatResponse {
	return ChatResponse{
		Answer:      failureAnswer,
		Sources:     []pipeline.Source{},
		Links:       []pipeline.Link{},
		Images:      []pipeline.Image{},
		Followups:   []string{},
		WorkspaceID: workspaceID,
	}
}
