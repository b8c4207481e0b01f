// Package openai talks to the external language model that produces raw
// workbook spec JSON (Chat Completions compatible API).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/spec"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4.1-mini"
)

// ErrUpstream indicates the model call failed outright or returned content
// with no decodable JSON. Not retried here; the caller is told to retry.
var ErrUpstream = errors.New("upstream spec call failed")

// ErrMissingAPIKey indicates the client was constructed without credentials.
var ErrMissingAPIKey = errors.New("openai api key not configured")

// Client implements the Chat Completions API (minimal support, enough to get
// one JSON document back).
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient builds a client. Empty baseURL/model fall back to defaults.
func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// BuildSpec asks the model for a workbook spec and returns the extracted raw
// JSON. All failure modes map to ErrUpstream.
func (c *Client) BuildSpec(ctx context.Context, req models.GenerateRequest) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, ErrMissingAPIKey)
	}

	payload := map[string]any{
		"model":       c.model,
		"temperature": 0.25,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(req)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var parsed chatResponse
	if jsonErr := json.Unmarshal(respBody, &parsed); jsonErr != nil && resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUpstream)
	}

	raw, err := spec.ExtractJSON(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: la IA no devolvió JSON válido", ErrUpstream)
	}
	return raw, nil
}
