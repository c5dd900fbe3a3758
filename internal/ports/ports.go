package ports

import (
	"context"
	"time"

	"quizfeed/internal/domain"
)

// Extractor fetches a source document and parses it into question records.
type Extractor interface {
	Extract(ctx context.Context, candidate domain.Candidate) ([]domain.QuestionRecord, error)
}

// DedupStore remembers which identifiers have already been published.
type DedupStore interface {
	Contains(ctx context.Context, identifier string) (bool, error)
	MarkProcessed(ctx context.Context, marker domain.ProcessedMarker) error
}

// ContentStore persists rendered articles and assigns their identifiers.
type ContentStore interface {
	Persist(ctx context.Context, doc domain.RenderedDocument) (domain.PersistedArticle, error)
}

// TextTranslator converts a single text into the target language (one network call).
type TextTranslator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Renderer builds the article body from translated records.
type Renderer interface {
	Render(records []domain.TranslatedQuestionRecord, dateLabel string) (string, error)
	Document(records []domain.TranslatedQuestionRecord, date time.Time) (domain.RenderedDocument, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// PostCommitHook is a side effect that runs after an article has been persisted.
// A failing hook never affects persistence, the processed marker, or other hooks.
type PostCommitHook interface {
	Name() string
	Run(ctx context.Context, pub domain.Publication) error
}
