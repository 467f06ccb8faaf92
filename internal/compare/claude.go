package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const anthropicURL = "https://api.anthropic.com/v1/messages"

// ClaudeClient compares sections through the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	model      string
	maxTokens  int
	endpoint   string
	httpClient *http.Client

	Stats *LLMStats
}

func NewClaudeClient(apiKey, model string, maxTokens int, timeout time.Duration) *ClaudeClient {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ClaudeClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  anthropicURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewLLMStats(time.Hour),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string { return c.model }

// Compare asks Claude for the differences between a section pair.
func (c *ClaudeClient) Compare(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	defer func() { c.Stats.Observe(time.Since(start), err) }()

	headers := http.Header{}
	headers.Set("x-api-key", c.apiKey)
	headers.Set("anthropic-version", "2023-06-01")

	respBody, err := postJSON(ctx, c.httpClient, c.endpoint, headers, anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildComparePrompt(in)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude api: %w", err)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from claude")
	}
	if apiResp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("claude reply truncated at %d tokens", c.maxTokens)
	}

	return parseResult(apiResp.Content[0].Text)
}

// Close releases resources.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
