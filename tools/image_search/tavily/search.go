package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"answerhub/tools/image_search/models"
	"answerhub/utils"
)

type Search struct {
	ApiKey string
}

func (s Search) SearchImages(ctx context.Context, q string, k int) ([]models.Image, error) {
	payload := map[string]any{
		"api_key":                    s.ApiKey,
		"query":                      q,
		"include_images":             true,
		"include_image_descriptions": true,
		"max_results":                k,
	}

	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.tavily.com/search", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var raw struct {
		Images []any `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// Images come back either as bare URL strings or as objects with a
	// url and description.
	var out []models.Image
	for _, it := range raw.Images {
		if len(out) >= k {
			break
		}
		switch v := it.(type) {
		case string:
			if v == "" {
				continue
			}
			out = append(out, models.Image{Title: q, ThumbnailURL: v, ContentURL: v})
		case map[string]any:
			url := utils.Str(v["url"])
			if url == "" {
				continue
			}
			title := utils.Str(v["description"])
			if title == "" {
				title = q
			}
			out = append(out, models.Image{Title: title, ThumbnailURL: url, ContentURL: url})
		}
	}
	return out, nil
}
