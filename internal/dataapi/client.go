// Package dataapi fetches genome metadata and summaries from the genome data
// service and assembles them into a genome object.
package dataapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"genomereport/internal/logger"
	"genomereport/internal/pkg/text"

	"github.com/tidwall/gjson"
)

const maxErrorBody = 200

const solrAccept = "&http_accept=application/solr+json"

// Options configures a Client.
type Options struct {
	DataURL string
	WikiURL string
	Token   string
	Timeout time.Duration
}

// Client is a thin, retry-free reader of the data API.
type Client struct {
	dataURL string
	wikiURL string
	token   string
	client  *http.Client
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		dataURL: strings.TrimRight(strings.TrimSpace(opts.DataURL), "/"),
		wikiURL: strings.TrimSpace(opts.WikiURL),
		token:   strings.TrimSpace(opts.Token),
		client:  &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token instead.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	if token = strings.TrimSpace(token); token != "" {
		cp.token = token
	}
	return &cp
}

func (c *Client) getData(ctx context.Context, purpose, pathAndQuery string) (gjson.Result, error) {
	return c.get(ctx, purpose, c.dataURL+pathAndQuery, true)
}

func (c *Client) get(ctx context.Context, purpose, rawURL string, auth bool) (gjson.Result, error) {
	if c == nil || c.client == nil {
		return gjson.Result{}, fmt.Errorf("data api client not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: build request: %w", purpose, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if auth && c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	logger.LogAPIRequest(purpose, rawURL)
	logger.Debugf("GET %s", rawURL)
	resp, err := c.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", purpose, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: read body: %w", purpose, err)
	}
	logger.LogAPIResponse(purpose, resp.StatusCode, string(body))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if snippet := text.Snippet(string(body), maxErrorBody); snippet != "" {
			return gjson.Result{}, fmt.Errorf("%s: unexpected status %s: %s", purpose, resp.Status, snippet)
		}
		return gjson.Result{}, fmt.Errorf("%s: unexpected status %s", purpose, resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%s: response is not valid JSON", purpose)
	}
	return gjson.ParseBytes(body), nil
}

// child finds key among an object's members without gjson path syntax, for
// keys such as "annotation,feature_type".
func child(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

func queryEscape(s string) string {
	return url.QueryEscape(strings.TrimSpace(s))
}
