package translate

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"

	"quizfeed/internal/ports"
)

// GoogleTranslator calls the Cloud Translation v2 API with source auto-detection.
type GoogleTranslator struct {
	svc *translatev2.Service
}

var _ ports.TextTranslator = (*GoogleTranslator)(nil)

// NewGoogleTranslator builds a client authenticated with an API key. endpoint and
// client are optional overrides.
func NewGoogleTranslator(ctx context.Context, apiKey, endpoint string, client *http.Client) (*GoogleTranslator, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}

	svc, err := translatev2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

// Translate returns the translated text for a single input.
func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, targetLanguage).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return "", fmt.Errorf("translate: empty response")
	}
	return resp.Translations[0].TranslatedText, nil
}
