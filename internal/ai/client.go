// Package ai talks to an OpenAI-compatible chat-completions endpoint for food
// analysis and daily meal-plan generation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourname/nutritracker/internal"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Options struct {
	BaseURL    string
	FoodModel  string
	PlanModel  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	foodModel string
	planModel string
	client    *http.Client
	logger    internal.Logger
}

func NewClient(opts Options, logger internal.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	foodModel := opts.FoodModel
	if foodModel == "" {
		foodModel = "gpt-4o-mini"
	}
	planModel := opts.PlanModel
	if planModel == "" {
		planModel = "gpt-3.5-turbo"
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		foodModel: foodModel,
		planModel: planModel,
		client:    hc,
		logger:    logger,
	}
}

// complete issues one chat-completion call and returns the first choice's
// content. fallback is the message used for non-2xx replies that carry no
// error message of their own.
func (c *Client) complete(ctx context.Context, credential string, reqBody ChatRequest, fallback string) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	c.logger.Debugf("ai: POST %s model=%s max_tokens=%d", req.URL.Path, reqBody.Model, reqBody.MaxTokens)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", internal.Wrapf(internal.ErrUpstream, "Request to AI service failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", internal.Wrapf(internal.ErrUpstream, "Failed to read AI response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnf("ai: status %d from %s", resp.StatusCode, req.URL.Path)
		return "", statusError(resp.StatusCode, body, fallback)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", internal.Wrapf(internal.ErrMalformedCompletion, "Failed to parse AI response: %v", err)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", internal.Wrap(internal.ErrEmptyCompletion, "No response from AI")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func statusError(status int, body []byte, fallback string) error {
	switch status {
	case http.StatusUnauthorized:
		return internal.Wrap(internal.ErrInvalidCredential, "Invalid API key. Please check your OpenAI API key in settings.")
	case http.StatusTooManyRequests:
		return internal.Wrap(internal.ErrRateLimited, "Rate limit exceeded. Please try again in a moment.")
	}
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return internal.Wrap(internal.ErrUpstream, apiErr.Error.Message)
	}
	return internal.Wrap(internal.ErrUpstream, fallback)
}

// StripCodeFence removes markdown code-fence markers around a JSON payload.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeContent(content string, dst any) error {
	if err := json.Unmarshal([]byte(StripCodeFence(content)), dst); err != nil {
		return internal.Wrapf(internal.ErrMalformedCompletion, "AI returned invalid JSON: %v", err)
	}
	return nil
}

func requireCredential(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return internal.Wrap(internal.ErrValidation, "Please set your OpenAI API key in settings")
	}
	return nil
}

// TestConnection sends a minimal prompt and returns the model's reply.
func (c *Client) TestConnection(ctx context.Context, credential string) (string, error) {
	if err := requireCredential(credential); err != nil {
		return "", err
	}
	return c.complete(ctx, credential, ChatRequest{
		Model:       c.foodModel,
		Messages:    []Message{{Role: "user", Content: `Say "API test successful" and nothing else`}},
		Temperature: 0.1,
		MaxTokens:   10,
	}, "API test failed")
}
