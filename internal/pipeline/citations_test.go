package pipeline

import (
	"reflect"
	"testing"
)

func TestExtractCitedIndices(t *testing.T) {
	cases := []struct {
		answer string
		want   []int
	}{
		{"plain answer without citations", nil},
		{"claims [1] and [3], then [1] again", []int{1, 3}},
		{"out of order [4] then [2]", []int{2, 4}},
		{"[12] double digit", []int{12}},
		{"[not a citation] and [ 1 ]", nil},
	}
	for _, tc := range cases {
		got := ExtractCitedIndices(tc.answer)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractCitedIndices(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestAttachSourcesMapsAndDrops(t *testing.T) {
	candidates := []Source{
		{Title: "one", URL: "https://a"},
		{Title: "two", URL: "https://b"},
		{Title: "three", URL: "https://c"},
	}

	got := AttachSources("see [1] and [3], ignore [7] and [0]", candidates)
	want := []Source{{Title: "one", URL: "https://a"}, {Title: "three", URL: "https://c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AttachSources = %v, want %v", got, want)
	}

	if got := AttachSources("no citations here", candidates); len(got) != 0 {
		t.Errorf("uncited answer should map to no sources, got %v", got)
	}
}

func TestAttachSourcesIdempotent(t *testing.T) {
	candidates := []Source{{Title: "a", URL: "u1"}, {Title: "b", URL: "u2"}}
	answer := "ranked [2] before [1], repeats [2]"

	first := AttachSources(answer, candidates)
	second := AttachSources(answer, candidates)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated attachment diverged: %v vs %v", first, second)
	}
	if len(first) != 2 || first[0].Title != "a" {
		t.Errorf("indices should come back ascending and deduplicated: %v", first)
	}
}
