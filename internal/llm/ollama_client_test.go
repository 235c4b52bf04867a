package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type ollamaPayload struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

func testRequest() Request {
	return Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a chef."},
			{Role: RoleUser, Content: "  How do I sear tofu?"},
		},
		Temperature: 0.5,
	}
}

func TestOllamaClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload ollamaPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "qwen3-vl:8b" {
			t.Fatalf("expected model qwen3-vl:8b, got %s", payload.Model)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		if payload.Options.Temperature != 0.5 {
			t.Fatalf("unexpected temperature %v", payload.Options.Temperature)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Content != "  How do I sear tofu?" {
			t.Fatalf("unexpected messages: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{"role":"assistant","content":"Press it first."},"done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "qwen3-vl:8b",
		client: server.Client(),
	}

	answer, err := client.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if answer != "Press it first." {
		t.Fatalf("unexpected answer: %s", answer)
	}
}

func TestOllamaClientStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload ollamaPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !payload.Stream {
			t.Fatal("expected streaming to be enabled")
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"message":{"role":"assistant","content":"Hel"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":"lo"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}` + "\n"))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "qwen3-vl:8b", client: server.Client()}

	var fragments []string
	full, err := client.Stream(context.Background(), testRequest(), func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if full != "Hello" {
		t.Fatalf("unexpected full text %q", full)
	}
	if len(fragments) != 2 || fragments[0] != "Hel" || fragments[1] != "lo" {
		t.Fatalf("unexpected fragments %v", fragments)
	}
}

func TestOllamaClientStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{status: http.StatusNotFound, kind: ErrorInvalidModel},
		{status: http.StatusUnauthorized, kind: ErrorAuth},
		{status: http.StatusTooManyRequests, kind: ErrorRateLimit},
		{status: http.StatusBadGateway, kind: ErrorServer},
		{status: http.StatusBadRequest, kind: ErrorBadRequest},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"nope"}`, tc.status)
		}))
		client := &ollamaClient{host: server.URL, model: "missing", client: server.Client()}
		_, err := client.Complete(context.Background(), testRequest())
		server.Close()

		var perr *ProviderError
		if !errors.As(err, &perr) {
			t.Fatalf("status %d: expected ProviderError, got %v", tc.status, err)
		}
		if perr.Kind != tc.kind || perr.Status != tc.status {
			t.Fatalf("status %d: got kind %s status %d", tc.status, perr.Kind, perr.Status)
		}
	}
}

func TestOllamaClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close()

	client := &ollamaClient{host: host, model: "m", client: &http.Client{}}
	_, err := client.Stream(context.Background(), testRequest(), nil)
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Kind != ErrorTransport {
		t.Fatalf("expected transport ProviderError, got %v", err)
	}
}

func TestOllamaClientMalformedBodyIsNotProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "m", client: server.Client()}
	_, err := client.Complete(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if IsProviderError(err) {
		t.Fatalf("decode failures should not be provider errors: %v", err)
	}
}
