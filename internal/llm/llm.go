package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaModel = "ministral-3:latest"
	defaultOllamaHost  = "http://localhost:11434"
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Config describes how to build an LLM client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of an ordered chat request.
type Message struct {
	Role    Role
	Content string
}

// Request is a single chat completion call.
type Request struct {
	Messages    []Message
	Temperature float64
}

// StreamHandler receives each text fragment as the provider produces it.
// Returning an error stops the stream.
type StreamHandler func(fragment string) error

// Client exposes blocking and streaming chat completions.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, handler StreamHandler) (string, error)
	Name() string
}

// NewFromEnv inspects CLI arguments & environment variables to build a client.
// A missing API key is not an error here; the provider rejects the call later.
func NewFromEnv(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	switch provider {
	case ProviderOpenAI:
		return newOpenAIFromEnv(cfg), nil
	case ProviderOllama:
		return newOllamaFromEnv(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want %s or %s)", cfg.Provider, ProviderOpenAI, ProviderOllama)
	}
}

func newOpenAIFromEnv(cfg Config) *openAIClient {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	base := cfg.Endpoint
	if base == "" {
		base = os.Getenv("OPENAI_BASE_URL")
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OPENAI_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOpenAIModel
		}
	}
	return newOpenAIClient(apiKey, model, base, pickHTTPClient(cfg.HTTPClient))
}

func newOllamaFromEnv(cfg Config) *ollamaClient {
	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = env
		} else {
			host = defaultOllamaHost
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Long generations can exceed a minute; the caller's context still cancels.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
