// Package chartimg renders chart images through an external rasterization
// service (QuickChart-compatible API).
package chartimg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://quickchart.io"

// ErrRender indicates the rasterization call failed. Callers downgrade it to
// a warning cell; it never fails a generation.
var ErrRender = errors.New("chart render failed")

// Request describes one chart to rasterize.
type Request struct {
	Type   string // "bar", "line" or "pie"
	Title  string
	Labels []string
	Values []float64
}

// Client talks to the chart service over plain HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client for the given base URL ("" uses the public
// QuickChart endpoint).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// Render submits the chart and returns the PNG bytes. Any transport error or
// non-2xx status maps to ErrRender.
func (c *Client) Render(ctx context.Context, req Request) ([]byte, error) {
	payload := map[string]any{
		"format":          "png",
		"width":           560,
		"height":          320,
		"backgroundColor": "white",
		"chart": map[string]any{
			"type": req.Type,
			"data": map[string]any{
				"labels": req.Labels,
				"datasets": []map[string]any{
					{"label": req.Title, "data": req.Values},
				},
			},
			"options": map[string]any{
				"title": map[string]any{"display": req.Title != "", "text": req.Title},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chart", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrRender, resp.Status)
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrRender)
	}
	return img, nil
}
