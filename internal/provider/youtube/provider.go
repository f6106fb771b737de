// Package youtube resolves video urls into playable metadata via the public
// oembed endpoint, falling back to scraping the watch page for videos the
// oembed endpoint refuses to describe.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/watchroom/server/internal/provider"
)

type Provider struct {
	client *http.Client
	logger *slog.Logger
}

func NewProvider(timeout time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *Provider) Resolve(ctx context.Context, videoURL string) (provider.VideoData, error) {
	p.logger.DebugContext(ctx, "resolving video metadata", "url", videoURL)

	data, err := p.getWithOembed(ctx, videoURL)
	if err != nil {
		if !errors.Is(err, provider.ErrVideoNotEmbeddable) {
			return provider.VideoData{}, fmt.Errorf("failed to get video data with oembed: %w", err)
		}

		data, err = p.getFromPage(ctx, videoURL)
		if err != nil {
			return provider.VideoData{}, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	data.URL = videoURL
	return data, nil
}

func (p *Provider) getWithOembed(ctx context.Context, videoURL string) (provider.VideoData, error) {
	oembedURL := fmt.Sprintf("https://www.youtube.com/oembed?url=%s&format=json", url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return provider.VideoData{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return provider.VideoData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound:
			return provider.VideoData{}, provider.ErrVideoNotFound
		case http.StatusUnauthorized:
			return provider.VideoData{}, provider.ErrVideoNotEmbeddable
		default:
			return provider.VideoData{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	var data provider.VideoData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return provider.VideoData{}, err
	}

	return data, nil
}
