// Package enhance proxies user text and code to an external chat-completions
// API with a fixed instruction per operation.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skribb-ai/backend/internal/errs"
)

// Canned system instructions, one per operation.
const (
	promptEnhance = "You are a writing assistant. Rewrite the user's text to improve clarity, " +
		"flow, and style while preserving its meaning and tone. Return only the rewritten text."
	promptFix = "You are a proofreader. Fix grammar, spelling, and punctuation mistakes in the " +
		"user's text. Do not reword or restructure beyond what the corrections require. " +
		"Return only the corrected text."
	promptCode = "You are a senior software engineer. Improve the user's code: better naming, " +
		"idiomatic style, and brief comments where they help. Keep the behavior identical. " +
		"Return only the improved code with no surrounding explanation."
)

// Client is a stateless chat-completions client. One synchronous call per
// operation, no retries, no streaming.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient constructs a Client for the given completions endpoint. timeout
// bounds the whole upstream call; there is no caller-facing cancellation path.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// EnhanceText rewrites text for clarity and style.
func (c *Client) EnhanceText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: Text is required", errs.ErrValidation)
	}
	return c.complete(ctx, promptEnhance, text)
}

// FixText corrects grammar and spelling only.
func (c *Client) FixText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: Text is required", errs.ErrValidation)
	}
	return c.complete(ctx, promptFix, text)
}

// EnhanceCode improves code, optionally hinting the language to the model.
func (c *Client) EnhanceCode(ctx context.Context, code, language string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: Code is required", errs.ErrValidation)
	}
	sys := promptCode
	if language != "" {
		sys += " The code is written in " + language + "."
	}
	return c.complete(ctx, sys, code)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completions round trip and returns the trimmed
// completion. Upstream failures are wrapped in ErrUpstream; the wrapped detail
// is only ever shown outside production.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: completions API returned %d: %s", errs.ErrUpstream, resp.StatusCode, detail)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed completions response: %v", errs.ErrUpstream, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: completions response missing content", errs.ErrUpstream)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
