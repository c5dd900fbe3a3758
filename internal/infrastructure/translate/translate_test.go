package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfeed/internal/config"
)

func TestChatGPTTranslator(t *testing.T) {
	t.Parallel()

	var captured struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  નમસ્તે \n"}}]}`))
	}))
	defer server.Close()

	tr := NewChatGPTTranslator(config.ChatGPTConfig{
		Endpoint:     server.URL,
		Model:        "gpt-test",
		APIKey:       "key-123",
		SystemPrompt: "Translate to %s.",
	}, server.Client())

	got, err := tr.Translate(context.Background(), "Hello", "gu")
	require.NoError(t, err)
	assert.Equal(t, "નમસ્તે", got)

	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "Translate to gu.", captured.Messages[0].Content)
	assert.Equal(t, "Hello", captured.Messages[1].Content)
}

func TestChatGPTTranslatorErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.ChatGPTConfig{Endpoint: server.URL, Model: "m", APIKey: "k"}

	_, err := NewChatGPTTranslator(cfg, server.Client()).Translate(context.Background(), "x", "gu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	cfg.Endpoint = server.URL + "/empty"
	_, err = NewChatGPTTranslator(cfg, server.Client()).Translate(context.Background(), "x", "gu")
	require.Error(t, err)

	_, err = NewChatGPTTranslator(config.ChatGPTConfig{}, nil).Translate(context.Background(), "x", "gu")
	require.Error(t, err)
}

func TestGoogleTranslator(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gu", r.FormValue("target"))
		assert.Equal(t, "text", r.FormValue("format"))
		assert.Equal(t, "Tom &amp; Jerry", r.FormValue("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"ટોમ &amp; જેરી","detectedSourceLanguage":"en"}]}}`))
	}))
	defer server.Close()

	tr, err := NewGoogleTranslator(context.Background(), "api-key", server.URL+"/language/translate/", server.Client())
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "Tom &amp; Jerry", "gu")
	require.NoError(t, err)
	// Entities in the source text are content and must survive untouched.
	assert.Equal(t, "ટોમ &amp; જેરી", got)
}

func TestGoogleTranslatorServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr, err := NewGoogleTranslator(context.Background(), "api-key", server.URL+"/", server.Client())
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "hello", "gu")
	require.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	t.Parallel()

	got, err := Passthrough{}.Translate(context.Background(), "unchanged", "gu")
	require.NoError(t, err)
	assert.Equal(t, "unchanged", got)
}
