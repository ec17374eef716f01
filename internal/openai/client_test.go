package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticKey(key string) KeySource {
	return func() (string, error) { return key, nil }
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		var req struct {
			Model          string    `json:"model"`
			Messages       []Message `json:"messages"`
			MaxTokens      int       `json:"max_tokens"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if errDecode := json.NewDecoder(r.Body).Decode(&req); errDecode != nil {
			t.Errorf("decode request: %v", errDecode)
		}
		if req.Model != "gpt-4o-mini" || req.MaxTokens != 500 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"text\":\"hello\"}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(staticKey("sk-test"), server.URL)
	content, err := client.Generate(context.Background(), "gpt-4o-mini", []Message{
		{Role: "system", Content: "preamble"},
		{Role: "user", Content: "write a post"},
	}, 500)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if content != `{"text":"hello"}` {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient(staticKey("sk-test"), server.URL)
	if _, err := client.Generate(context.Background(), "gpt-4o-mini", nil, 0); err == nil {
		t.Fatalf("expected error on upstream failure")
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	client := NewClient(staticKey(""), "http://127.0.0.1:1")
	if _, err := client.Generate(context.Background(), "gpt-4o-mini", nil, 0); err == nil {
		t.Fatalf("expected error without api key")
	}
}
