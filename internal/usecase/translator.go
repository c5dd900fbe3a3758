package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
	"quizfeed/internal/retry"
)

// FallbackTranslator wraps a TextTranslator with a bounded retry policy. When the
// policy is exhausted it returns the original text instead of an error.
type FallbackTranslator struct {
	backend    ports.TextTranslator
	policy     retry.Policy
	target     string
	pacing     time.Duration
	logger     *slog.Logger
	onFallback func()
}

// TranslatorDeps configures a FallbackTranslator.
type TranslatorDeps struct {
	Backend        ports.TextTranslator
	Policy         retry.Policy
	TargetLanguage string
	// Pacing is a pause between records, limiting the request rate against the backend.
	Pacing time.Duration
	Logger *slog.Logger
	// OnFallback is invoked once per field that kept its original text.
	OnFallback func()
}

// NewFallbackTranslator constructs the translator.
func NewFallbackTranslator(deps TranslatorDeps) *FallbackTranslator {
	return &FallbackTranslator{
		backend:    deps.Backend,
		policy:     deps.Policy,
		target:     deps.TargetLanguage,
		pacing:     deps.Pacing,
		logger:     deps.Logger,
		onFallback: deps.OnFallback,
	}
}

// Translate returns the translated text, or the original text byte-for-byte when
// every attempt failed. It never returns an error.
func (t *FallbackTranslator) Translate(ctx context.Context, text string) domain.TranslatedText {
	if strings.TrimSpace(text) == "" || t.backend == nil {
		return domain.Untranslated(text)
	}

	var translated string
	err := t.policy.Do(ctx, func(ctx context.Context) error {
		out, err := t.backend.Translate(ctx, text, t.target)
		if err != nil {
			return err
		}
		translated = out
		return nil
	}, func(attempt int, err error) {
		t.warn("translation attempt failed", "attempt", attempt, "max_attempts", t.policy.MaxAttempts, "error", err)
	})
	if err != nil {
		t.warn("translation failed, keeping original text", "error", err)
		if t.onFallback != nil {
			t.onFallback()
		}
		return domain.Untranslated(text)
	}

	return domain.TranslatedText{Text: translated, Original: text, Translated: true}
}

// TranslateRecord translates every text field independently and in order.
func (t *FallbackTranslator) TranslateRecord(ctx context.Context, record domain.QuestionRecord) domain.TranslatedQuestionRecord {
	out := domain.TranslatedQuestionRecord{
		Question:     t.Translate(ctx, record.Question),
		Options:      make([]domain.TranslatedOption, 0, len(record.Options)),
		CorrectLabel: record.CorrectLabel,
	}

	for _, opt := range record.Options {
		out.Options = append(out.Options, domain.TranslatedOption{
			Label: opt.Label,
			Text:  t.Translate(ctx, opt.Text),
		})
	}

	if correct, ok := record.CorrectOption(); ok {
		out.Resolved = true
		out.CorrectAnswer = t.Translate(ctx, correct.Text)
	} else {
		out.CorrectAnswer = domain.Untranslated(domain.UnresolvedAnswer)
	}

	out.Explanation = t.Translate(ctx, record.Explanation)
	return out
}

// TranslateAll translates records sequentially, pausing between records.
func (t *FallbackTranslator) TranslateAll(ctx context.Context, records []domain.QuestionRecord) []domain.TranslatedQuestionRecord {
	out := make([]domain.TranslatedQuestionRecord, 0, len(records))
	for i, record := range records {
		if i > 0 && !t.pause(ctx) {
			// Context is done: remaining records keep their original text.
			out = append(out, untranslatedRecord(record))
			continue
		}
		out = append(out, t.TranslateRecord(ctx, record))
	}
	return out
}

func (t *FallbackTranslator) pause(ctx context.Context) bool {
	if t.pacing <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(t.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func untranslatedRecord(record domain.QuestionRecord) domain.TranslatedQuestionRecord {
	out := domain.TranslatedQuestionRecord{
		Question:     domain.Untranslated(record.Question),
		CorrectLabel: record.CorrectLabel,
		Explanation:  domain.Untranslated(record.Explanation),
	}
	for _, opt := range record.Options {
		out.Options = append(out.Options, domain.TranslatedOption{Label: opt.Label, Text: domain.Untranslated(opt.Text)})
	}
	_, out.Resolved = record.CorrectOption()
	out.CorrectAnswer = domain.Untranslated(record.CorrectAnswer())
	return out
}

func (t *FallbackTranslator) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}
