package dataapi

import (
	"context"
	"strings"

	"genomereport/internal/logger"
)

// Wiki is an organism blurb with an optional thumbnail.
type Wiki struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ImageSource string `json:"imageSource,omitempty"`
}

// Wiki looks up the species, then the genus. It returns nil when neither
// has an extract.
func (c *Client) Wiki(ctx context.Context, species, genus string) (*Wiki, error) {
	var lastErr error
	for _, title := range []string{species, genus} {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		logger.Infof("querying wiki for %q", title)
		text, err := c.wikiExtract(ctx, title)
		if err != nil {
			lastErr = err
			continue
		}
		if text == "" {
			continue
		}
		w := &Wiki{Title: title, Text: text}
		if img, err := c.wikiImage(ctx, title); err != nil {
			logger.Warnf("wiki image for %q: %v", title, err)
		} else {
			w.ImageSource = img
		}
		return w, nil
	}
	return nil, lastErr
}

func (c *Client) wikiExtract(ctx context.Context, title string) (string, error) {
	u := c.wikiURL + "?action=query&prop=extracts&exintro=&format=json&formatversion=2&titles=" + queryEscape(title)
	res, err := c.get(ctx, "wiki", u, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Get("query.pages.0.extract").String()), nil
}

func (c *Client) wikiImage(ctx context.Context, title string) (string, error) {
	u := c.wikiURL + "?action=query&prop=pageimages&format=json&formatversion=2&pithumbsize=400&titles=" + queryEscape(title)
	res, err := c.get(ctx, "wiki image", u, false)
	if err != nil {
		return "", err
	}
	return res.Get("query.pages.0.thumbnail.source").String(), nil
}
