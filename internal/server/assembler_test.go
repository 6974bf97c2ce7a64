package server

import (
	"testing"

	"answerhub/internal/pipeline"
	"answerhub/internal/router"
)

func TestAssembleFillsEmptySlices(t *testing.T) {
	st := &pipeline.State{WorkspaceID: "ws-1"}
	st.Answer = "done"
	resp := assemble(st)

	if resp.Answer != "done" || resp.WorkspaceID != "ws-1" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Sources == nil || resp.Links == nil || resp.Images == nil || resp.Followups == nil {
		t.Error("expected empty slices, got nils")
	}
}

func TestAssembleKeepsPipelineOutputs(t *testing.T) {
	st := &pipeline.State{}
	st.Answer = "a"
	st.Sources = []pipeline.Source{{Title: "T", URL: "u"}}
	st.Followups = []string{"next"}
	resp := assemble(st)
	if len(resp.Sources) != 1 || resp.Sources[0].Title != "T" {
		t.Errorf("sources = %v", resp.Sources)
	}
	if len(resp.Followups) != 1 {
		t.Errorf("followups = %v", resp.Followups)
	}
}

func TestDefaultTab(t *testing.T) {
	withImages := ChatResponse{Images: []pipeline.Image{{Title: "i"}}}
	withLinks := ChatResponse{Links: []pipeline.Link{{Title: "l"}}}
	empty := ChatResponse{}

	cases := []struct {
		mode router.Mode
		resp ChatResponse
		want string
	}{
		{router.ModeImage, withImages, "images"},
		{router.ModeImage, empty, "answer"},
		{router.ModeWeb, withLinks, "links"},
		{router.ModeWeb, empty, "answer"},
		{router.ModeDeepResearch, withLinks, "answer"},
		{router.ModeLLM, empty, "answer"},
	}
	for _, tc := range cases {
		if got := defaultTab(tc.mode, tc.resp); got != tc.want {
			t.Errorf("defaultTab(%s) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}

func TestFailureResponseShape(t *testing.T) {
	resp := failureResponse("ws-9")
	if resp.Answer != failureAnswer {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.WorkspaceID != "ws-9" {
		t.Errorf("workspace = %q", resp.WorkspaceID)
	}
	if resp.Sources == nil || resp.Links == nil || resp.Images == nil || resp.Followups == nil {
		t.Error("expected empty slices, got nils")
	}
}
