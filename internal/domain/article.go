package domain

import "time"

// Candidate is a per-day source reference. Its URL is the deduplication key.
type Candidate struct {
	Date time.Time
	URL  string
}

// Key returns the identifier stored in the deduplication store.
func (c Candidate) Key() string {
	return c.URL
}

// RenderedDocument is the publishable article built from one candidate.
type RenderedDocument struct {
	Title          string
	Date           time.Time
	DateLabel      string
	Body           string
	ImageReference string
}

// PersistedArticle is a RenderedDocument after the content store accepted it.
type PersistedArticle struct {
	RenderedDocument
	ID        int64
	CreatedAt time.Time
}

// ProcessedMarker records that an identifier has been published.
type ProcessedMarker struct {
	Identifier  string
	ProcessedAt time.Time
}

// Publication is handed to post-commit hooks once an article is persisted.
type Publication struct {
	Article   PersistedArticle
	Candidate Candidate
	Questions []TranslatedQuestionRecord
}

// Lead returns the first question of the publication.
func (p Publication) Lead() (TranslatedQuestionRecord, bool) {
	if len(p.Questions) == 0 {
		return TranslatedQuestionRecord{}, false
	}
	return p.Questions[0], true
}

// Total is the number of questions in the publication.
func (p Publication) Total() int {
	return len(p.Questions)
}
