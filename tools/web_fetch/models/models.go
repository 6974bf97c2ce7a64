package models

type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}

// Empty reports whether the fetch produced no usable text.
func (r Result) Empty() bool { return r.Text == "" }
