package llm

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

const anthropicVersion = "2023-06-01"

var (
	// ErrMissingCredential is returned when no API key is configured. The check
	// happens before any network I/O.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrCompletionFailed is returned for any failure during the completion
	// call: transport errors, API errors, and malformed responses.
	ErrCompletionFailed = errors.New("completion failed")
)

// Client is a client for the Anthropic messages API.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewClient creates a new completion client. The timeout bounds each completion
// call; a zero timeout disables the bound.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries the full conversation and the session's model
// settings for one completion call.
type CompletionRequest struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Messages    []Message
}

// messagesPayload is the wire format of a messages-API request.
type messagesPayload struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// ContentBlock represents one segment of a model response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MessagesResponse represents the response from the messages API.
type MessagesResponse struct {
	ID      string         `json:"id"`
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// apiError is the error envelope the API returns on non-2xx statuses.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the full conversation to the messages API and returns the
// first text segment of the response; any further segments are ignored.
//
// Every failure path is classified: a blank API key yields ErrMissingCredential
// without touching the network, and everything else wraps ErrCompletionFailed
// with a human-readable description. The conversation is sent as-is, with no
// truncation or windowing.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingCredential
	}

	payload := messagesPayload{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrCompletionFailed, err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrCompletionFailed, err)
	}

	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var envelope apiError
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
			return "", fmt.Errorf("%w: %s (status %d)", ErrCompletionFailed, envelope.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: bad status %d: %s", ErrCompletionFailed, resp.StatusCode, string(raw))
	}

	var msgResp MessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrCompletionFailed, err)
	}

	for _, block := range msgResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: response contained no text segment", ErrCompletionFailed)
}
