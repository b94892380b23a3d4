// Package textgen implements the chat-completions text generation
// capability against the OpenAI and Azure OpenAI APIs.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pegsys/transcript-insights/internal/insight"
)

const (
	// ProviderOpenAI targets api.openai.com.
	ProviderOpenAI = "openai"
	// ProviderAzure targets an Azure OpenAI deployment.
	ProviderAzure = "azure"

	defaultEndpoint   = "https://api.openai.com/v1/chat/completions"
	defaultModel      = "gpt-4o-mini"
	defaultAPIVersion = "2024-02-01"
)

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config selects the provider and credentials for a Client.
type Config struct {
	// Provider is "openai" or "azure". Empty means "openai".
	Provider string
	// APIKey authenticates requests. Required.
	APIKey string
	// Endpoint overrides the chat-completions URL. For Azure it is the
	// resource base URL (https://<resource>.openai.azure.com) and is
	// required; for OpenAI it defaults to the public API.
	Endpoint string
	// Model is the model name (OpenAI) or deployment name (Azure).
	Model string
	// APIVersion applies to Azure requests only.
	APIVersion string
}

// Client calls a chat-completions endpoint and returns plain text.
// It implements insight.TextGenerator.
type Client struct {
	provider   string
	apiKey     string
	endpoint   string
	model      string
	httpClient HTTPDoer
}

// NewClient builds a client from cfg. The API key is validated lazily
// on the first call so a keyless process can still construct the
// pipeline and rely on the heuristic fallback.
func NewClient(cfg Config, httpClient HTTPDoer) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	var endpoint string
	switch provider {
	case ProviderOpenAI:
		endpoint = strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			endpoint = defaultEndpoint
		}
	case ProviderAzure:
		base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
		if base == "" {
			return nil, errors.New("azure provider requires an endpoint")
		}
		apiVersion := strings.TrimSpace(cfg.APIVersion)
		if apiVersion == "" {
			apiVersion = defaultAPIVersion
		}
		endpoint = fmt.Sprintf(
			"%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, url.PathEscape(model), url.QueryEscape(apiVersion),
		)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	return &Client{
		provider:   provider,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   endpoint,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Model reports the configured model or deployment name.
func (c *Client) Model() string { return c.model }

// Generate sends the request messages to the chat-completions endpoint
// and returns the first choice's text content.
func (c *Client) Generate(ctx context.Context, req insight.GenerationRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("api key is empty")
	}
	if len(req.Messages) == 0 {
		return "", errors.New("messages are empty")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(chatCompletionsRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.provider == ProviderAzure {
		request.Header.Set("api-key", c.apiKey)
	} else {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var apiErr apiErrorEnvelope
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("chat status %d: %s", response.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("chat error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat returned no choices")
	}

	message := parsed.Choices[0].Message
	if strings.TrimSpace(message.Refusal) != "" {
		return "", fmt.Errorf("chat refusal: %s", strings.TrimSpace(message.Refusal))
	}

	content, err := parseMessageContent(message.Content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func parseMessageContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var asParts []responseContentPart
	if err := json.Unmarshal(raw, &asParts); err == nil {
		var builder strings.Builder
		for _, part := range asParts {
			if part.Type == "text" {
				builder.WriteString(part.Text)
			}
		}
		return builder.String(), nil
	}

	return "", fmt.Errorf("unsupported chat message content format: %s", string(raw))
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []chatChoice     `json:"choices"`
	Error   apiErrorResponse `json:"error"`
}

type chatChoice struct {
	Message chatMessageResponse `json:"message"`
}

type chatMessageResponse struct {
	Content json.RawMessage `json:"content"`
	Refusal string          `json:"refusal"`
}

type responseContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorEnvelope struct {
	Error apiErrorResponse `json:"error"`
}

type apiErrorResponse struct {
	Message string `json:"message"`
}
