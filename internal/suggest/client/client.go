// Package client talks to an OpenAI-compatible chat-completions API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
)

// SystemPrompt frames every request as a document-editing task.
const SystemPrompt = "You are a professional document editor. Your task is to improve documents by enhancing clarity, professionalism, and structure while maintaining the original intent."

const failureMessage = "Failed to get AI suggestion"

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

type Client struct {
	opts Options
	http *http.Client
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No timeout beyond the transport's; callers bound requests with ctx.
		httpClient = http.DefaultClient
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{opts: opts, http: httpClient}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends text as the user message and returns the first choice.
// Any failure is an UpstreamError whose Details hold the upstream "error"
// field when one was returned, or the failure text otherwise.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: c.opts.Model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", apperror.Upstream(failureMessage, err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", apperror.Upstream(failureMessage, err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Sugar.Errorf("Error fetching AI suggestion: %v", err)
		return "", apperror.Upstream(failureMessage, err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.Upstream(failureMessage, err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details := upstreamDetails(body, resp.StatusCode)
		logger.Sugar.Errorf("Error fetching AI suggestion: status %d: %s", resp.StatusCode, body)
		return "", apperror.Upstream(failureMessage, details, fmt.Errorf("upstream returned %d", resp.StatusCode))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", apperror.Upstream(failureMessage, "Invalid response from AI service", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil || out.Choices[0].Message.Content == "" {
		return "", apperror.Upstream(failureMessage, "Invalid response from AI service", nil)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func upstreamDetails(body []byte, status int) any {
	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		var details any
		if json.Unmarshal(parsed.Error, &details) == nil {
			return details
		}
	}
	return fmt.Sprintf("Request failed with status code %d", status)
}
