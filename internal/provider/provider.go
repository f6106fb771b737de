// Package provider defines the video metadata lookup contract consumed by the
// room service.
package provider

import (
	"context"
	"errors"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type Provider interface {
	Resolve(ctx context.Context, videoURL string) (VideoData, error)
}

type VideoData struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}
