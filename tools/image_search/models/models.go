package models

type Image struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	ContentURL   string `json:"content_url"`
}
