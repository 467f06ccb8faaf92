package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Defaults for OpenAI-compatible endpoints.
const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o"
	DefaultAzureAPIVersion = "2024-08-01-preview"
	defaultOpenAIMaxTokens = 16384
	defaultOpenAITimeout   = 120 * time.Second
)

// OpenAIConfig configures an OpenAI or Azure OpenAI chat-completions client.
type OpenAIConfig struct {
	APIKey string

	// BaseURL is the API root. For Azure this is the resource endpoint,
	// e.g. https://myres.openai.azure.com.
	BaseURL string

	// Model is the model name, or the deployment name on Azure.
	Model string

	Azure      bool
	APIVersion string

	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient compares sections through a chat-completions endpoint.
type OpenAIClient struct {
	cfg        OpenAIConfig
	endpoint   string
	httpClient *http.Client

	Stats *LLMStats
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		if cfg.Azure {
			return nil, fmt.Errorf("openai: base URL is required for Azure")
		}
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultOpenAIMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOpenAITimeout
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	endpoint := base + "/chat/completions"
	if cfg.Azure {
		endpoint = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, url.PathEscape(cfg.Model), url.QueryEscape(cfg.APIVersion))
	}

	return &OpenAIClient{
		cfg:      cfg,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		Stats: NewLLMStats(time.Hour),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Model returns the configured model or deployment name.
func (c *OpenAIClient) Model() string { return c.cfg.Model }

// Compare asks the chat model for the differences between a section pair.
func (c *OpenAIClient) Compare(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	defer func() { c.Stats.Observe(time.Since(start), err) }()

	headers := http.Header{}
	req := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildComparePrompt(in)},
		},
		MaxTokens:      c.cfg.MaxTokens,
		Temperature:    c.cfg.Temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	if c.cfg.Azure {
		headers.Set("api-key", c.cfg.APIKey)
	} else {
		headers.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Model = c.cfg.Model
	}

	respBody, err := postJSON(ctx, c.httpClient, c.endpoint, headers, req)
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai")
	}
	choice := chatResp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("openai reply truncated at %d tokens", c.cfg.MaxTokens)
	}

	return parseResult(choice.Message.Content)
}

// Close releases resources.
func (c *OpenAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}
