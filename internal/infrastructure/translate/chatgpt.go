package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizfeed/internal/config"
	"quizfeed/internal/ports"
)

// ChatGPTTranslator implements ports.TextTranslator backed by OpenAI-compatible APIs.
type ChatGPTTranslator struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.TextTranslator = (*ChatGPTTranslator)(nil)

// NewChatGPTTranslator builds a client from configuration.
func NewChatGPTTranslator(cfg config.ChatGPTConfig, client *http.Client) *ChatGPTTranslator {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ChatGPTTranslator{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Translate sends text as the user message and returns the first choice.
func (c *ChatGPTTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"temperature": 0,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt(c.systemPrompt, targetLanguage)},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("chatgpt returned empty translation")
	}
	return out, nil
}

func systemPrompt(prompt, targetLanguage string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = "Translate the user's text into the language with ISO code %s. Reply with the translation only."
	}
	if strings.Contains(prompt, "%s") {
		return fmt.Sprintf(prompt, targetLanguage)
	}
	return prompt
}
