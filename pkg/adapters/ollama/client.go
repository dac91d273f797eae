// Package ollama implements ports.Assistant against the Ollama chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "qwen2.5:32b"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4096

// Client calls POST {endpoint}/api/chat with streaming disabled.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	topP       float64
	httpClient *http.Client
}

type Option func(*Client)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTopP sets the nucleus sampling used when a request leaves it unset.
func WithTopP(p float64) Option {
	return func(c *Client) {
		c.topP = p
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the Ollama server at endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      DefaultModel,
		topP:       0.9,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the configured model name.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  chatOptions      `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
}

type chatResponse struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

// Complete sends one chat request and returns the assistant message content.
// Failures are *domain.AssistantError.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	topP := req.TopP
	if topP == 0 {
		topP = c.topP
	}
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: req.Messages,
		Options:  chatOptions{Temperature: req.Temperature, TopP: topP},
	})
	if err != nil {
		return "", &domain.AssistantError{Kind: domain.AssistantMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &domain.AssistantError{Kind: domain.AssistantUnreachable, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.AssistantError{Kind: domain.AssistantUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &domain.AssistantError{
			Kind:       domain.AssistantStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(statusMessage(resp, raw)),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.AssistantError{Kind: domain.AssistantMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Message == nil {
		return "", &domain.AssistantError{Kind: domain.AssistantMalformed, Err: errors.New("response has no message")}
	}
	return out.Message.Content, nil
}

func statusMessage(resp *http.Response, raw []byte) string {
	var e chatResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return resp.Status
}
