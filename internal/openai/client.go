package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultBaseURL targets the hosted OpenAI API.
const defaultBaseURL = "https://api.openai.com/v1"

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// KeySource resolves the provider credential at request time, so key
// rotation in settings takes effect without a restart.
type KeySource func() (string, error)

// Client calls the chat completions endpoint with a fixed request shape.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keySource  KeySource
}

// NewClient constructs a Client. An empty baseURL selects the hosted API.
func NewClient(keySource KeySource, baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		keySource:  keySource,
	}
}

// chatRequest is the completion request payload.
type chatRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

// chatResponse maps the fields read from the completion response.
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

// Generate requests a JSON-formatted completion and returns its content.
func (c *Client) Generate(ctx context.Context, model string, messages []Message, maxTokens int) (string, error) {
	if c == nil || c.keySource == nil {
		return "", fmt.Errorf("openai: client not initialized")
	}
	apiKey, errKey := c.keySource()
	if errKey != nil {
		return "", fmt.Errorf("openai: resolve api key: %w", errKey)
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("openai: no api key configured")
	}

	payload := chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	payload.ResponseFormat.Type = "json_object"

	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return "", fmt.Errorf("openai: encode request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if errReq != nil {
		return "", fmt.Errorf("openai: build request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return "", fmt.Errorf("openai: request failed: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, errRead := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if errRead != nil {
		return "", fmt.Errorf("openai: read response: %w", errRead)
	}

	var parsed chatResponse
	if errUnmarshal := json.Unmarshal(respBody, &parsed); errUnmarshal != nil {
		return "", fmt.Errorf("openai: decode response (status %d): %w", resp.StatusCode, errUnmarshal)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
