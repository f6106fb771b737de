package youtube

import (
	"context"
	"net/http"

	"golang.org/x/net/html"

	"github.com/watchroom/server/internal/provider"
)

// getFromPage scrapes the watch page itself. Non-embeddable videos still
// carry their title and channel name in the page head.
func (p *Provider) getFromPage(ctx context.Context, videoURL string) (provider.VideoData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return provider.VideoData{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return provider.VideoData{}, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return provider.VideoData{}, err
	}

	return provider.VideoData{
		Title:        pageTitle(doc),
		AuthorName:   pageAuthor(doc),
		ThumbnailURL: metaContent(doc, "og:image"),
	}, nil
}

func pageTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := pageTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func pageAuthor(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		var isName bool
		var content string
		for _, attr := range n.Attr {
			if attr.Key == "itemprop" && attr.Val == "name" {
				isName = true
			}
			if attr.Key == "content" {
				content = attr.Val
			}
		}
		if isName {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if author := pageAuthor(c); author != "" {
			return author
		}
	}
	return ""
}

func metaContent(n *html.Node, property string) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var matches bool
		var content string
		for _, attr := range n.Attr {
			if attr.Key == "property" && attr.Val == property {
				matches = true
			}
			if attr.Key == "content" {
				content = attr.Val
			}
		}
		if matches {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if content := metaContent(c, property); content != "" {
			return content
		}
	}
	return ""
}
