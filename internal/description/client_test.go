package description

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/aura-studio/internal/media"
	"github.com/eleven-am/aura-studio/internal/shared"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

type capturedRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIKey: "sk-test"})
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected baseURL %s, got %s", DefaultBaseURL, client.baseURL)
	}
	if client.model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, client.model)
	}
	if client.httpClient.Timeout != 120*time.Second {
		t.Errorf("expected timeout 120s, got %v", client.httpClient.Timeout)
	}
}

func TestNewClient_Custom(t *testing.T) {
	client := NewClient(Config{
		BaseURL: "http://localhost:9999/v1/",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	if client.baseURL != "http://localhost:9999/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", client.model)
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", client.httpClient.Timeout)
	}
}

func TestClient_Describe_Success(t *testing.T) {
	var captured capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type application/json")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o-2024-08-06",
			"choices": [{"message": {"role": "assistant", "content": "  ## A pink square\n\nSolid pink.  \n"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})
	resp, err := client.Describe(context.Background(), DescribeRequest{
		Image: media.Image{Filename: "pink.png", Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if resp.Description != "## A pink square\n\nSolid pink." {
		t.Errorf("expected trimmed description, got %q", resp.Description)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}

	if captured.Model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, captured.Model)
	}
	if captured.Temperature == nil {
		t.Fatal("temperature must always be sent")
	}
	if *captured.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", *captured.Temperature)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}

	var system string
	if err := json.Unmarshal(captured.Messages[0].Content, &system); err != nil {
		t.Fatalf("system content should be a string: %v", err)
	}
	if captured.Messages[0].Role != "system" || system != SystemPrompt {
		t.Errorf("unexpected system message: %s %q", captured.Messages[0].Role, system)
	}

	var parts []contentPart
	if err := json.Unmarshal(captured.Messages[1].Content, &parts); err != nil {
		t.Fatalf("user content should be a list of parts: %v", err)
	}
	if captured.Messages[1].Role != "user" {
		t.Errorf("expected user role, got %s", captured.Messages[1].Role)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != UserPrompt {
		t.Errorf("unexpected text part: %+v", parts[0])
	}
	if parts[1].Type != "image_url" || parts[1].ImageURL == nil {
		t.Fatalf("unexpected image part: %+v", parts[1])
	}
	if parts[1].ImageURL.URL != "data:image/png;base64,"+media.Encode(pngHeader) {
		t.Errorf("unexpected data uri: %s", parts[1].ImageURL.URL)
	}
}

func TestClient_Describe_NoImage(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1"})
	_, err := client.Describe(context.Background(), DescribeRequest{})
	if !errors.Is(err, shared.ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
}

func TestClient_Describe_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "bad"})
	_, err := client.Describe(context.Background(), DescribeRequest{
		Image: media.Image{Data: pngHeader},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var remoteErr *shared.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if remoteErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", remoteErr.StatusCode)
	}
	if remoteErr.Code != "invalid_api_key" {
		t.Errorf("expected code invalid_api_key, got %s", remoteErr.Code)
	}
}

func TestClient_Describe_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Describe(context.Background(), DescribeRequest{
		Image: media.Image{Data: pngHeader},
	})
	if !errors.Is(err, shared.ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestClient_Describe_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Describe(context.Background(), DescribeRequest{
		Image: media.Image{Data: pngHeader},
	})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestClient_Describe_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Describe(ctx, DescribeRequest{Image: media.Image{Data: pngHeader}})
	if err == nil {
		t.Error("expected error on canceled context")
	}
}

func TestClient_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/"+DefaultModel {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !NewClient(Config{BaseURL: server.URL}).IsAvailable(context.Background()) {
		t.Error("expected service to be available")
	}
	if NewClient(Config{BaseURL: server.URL, Model: "missing"}).IsAvailable(context.Background()) {
		t.Error("expected unknown model to be unavailable")
	}
}

func TestClient_IsAvailable_Unreachable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if client.IsAvailable(context.Background()) {
		t.Error("expected unreachable service to be unavailable")
	}
}
