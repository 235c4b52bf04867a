package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const ollamaProviderName = "Ollama"

type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error"`
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(ollamaProviderName, err)
	}
	var parsed ollamaChunk
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", statusError(ollamaProviderName, http.StatusInternalServerError, fmt.Errorf("%s", parsed.Error))
	}
	if parsed.Message.Content == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return parsed.Message.Content, nil
}

func (c *ollamaClient) Stream(ctx context.Context, req Request, handler StreamHandler) (string, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return full.String(), err
		}
		if chunk.Error != "" {
			return full.String(), statusError(ollamaProviderName, http.StatusInternalServerError, fmt.Errorf("%s", chunk.Error))
		}
		if fragment := chunk.Message.Content; fragment != "" {
			full.WriteString(fragment)
			if handler != nil {
				if err := handler(fragment); err != nil {
					return full.String(), err
				}
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), transportError(ollamaProviderName, err)
	}
	return full.String(), nil
}

func (c *ollamaClient) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{Role: string(msg.Role), Content: msg.Content})
	}
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   stream,
		"options": map[string]any{
			"temperature": req.Temperature,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError(ollamaProviderName, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError(ollamaProviderName, resp.StatusCode, fmt.Errorf("%s (%s)", resp.Status, strings.TrimSpace(string(body))))
	}
	return resp, nil
}
