package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pegsys/transcript-insights/internal/insight"
)

func newTestClient(t *testing.T, cfg Config, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	if cfg.Provider == ProviderAzure {
		cfg.Endpoint = server.URL
	} else {
		cfg.Endpoint = server.URL + "/v1/chat/completions"
	}
	client, err := NewClient(cfg, server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func simpleRequest() insight.GenerationRequest {
	return insight.GenerationRequest{
		Messages: []insight.GenerationMessage{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		MaxTokens:   100,
		Temperature: 0.7,
	}
}

func TestGenerateSuccess(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]any
	client := newTestClient(t, Config{APIKey: "test-key", Model: "test-model"}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"a concise insight"}}]}`))
	})

	text, err := client.Generate(context.Background(), simpleRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "a concise insight" {
		t.Fatalf("text got %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header got %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("model got %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(100) {
		t.Fatalf("max_tokens got %v", gotBody["max_tokens"])
	}
}

func TestGenerateContentParts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, Config{APIKey: "k"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}}]}`))
	})

	text, err := client.Generate(context.Background(), simpleRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "part one part two" {
		t.Fatalf("text got %q", text)
	}
}

func TestGenerateAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, Config{APIKey: "k"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	})

	_, err := client.Generate(context.Background(), simpleRequest())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("error got %v", err)
	}
}

func TestGenerateRefusal(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, Config{APIKey: "k"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":null,"refusal":"cannot comply"}}]}`))
	})

	_, err := client.Generate(context.Background(), simpleRequest())
	if err == nil || !strings.Contains(err.Error(), "refusal") {
		t.Fatalf("error got %v", err)
	}
}

func TestGenerateNoChoices(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, Config{APIKey: "k"}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Generate(context.Background(), simpleRequest())
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("error got %v", err)
	}
}

func TestGenerateEmptyKey(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), simpleRequest()); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestGenerateEmptyMessages(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), insight.GenerationRequest{}); err == nil {
		t.Fatalf("expected error for empty messages")
	}
}

func TestAzureProvider(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotAPIKey string
	client := newTestClient(t, Config{
		Provider: ProviderAzure,
		APIKey:   "azure-key",
		Model:    "gpt-4o-test",
	}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("api-key")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	if _, err := client.Generate(context.Background(), simpleRequest()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(gotPath, "/openai/deployments/gpt-4o-test/chat/completions") {
		t.Fatalf("path got %q", gotPath)
	}
	if !strings.Contains(gotPath, "api-version=") {
		t.Fatalf("missing api-version in %q", gotPath)
	}
	if gotAPIKey != "azure-key" {
		t.Fatalf("api-key header got %q", gotAPIKey)
	}
}

func TestAzureRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Provider: ProviderAzure, APIKey: "k"}, nil); err == nil {
		t.Fatalf("expected error for missing azure endpoint")
	}
}

func TestUnknownProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Provider: "watson"}, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
