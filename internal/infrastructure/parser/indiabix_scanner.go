package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"quizfeed/internal/domain"
	"quizfeed/internal/scanner"
)

const (
	containerSelector   = "div.bix-div-container"
	questionSelector    = "div.bix-td-qtxt"
	answerKeySelector   = "input.jq-hdnakq"
	optionSelector      = "div.bix-td-option-val"
	explanationSelector = "div.bix-ans-description"

	defaultExplanation = "No explanation available"
	userAgent          = "quizfeed/1.0"
)

var (
	// ErrNoContent is returned when a page carries none of the expected question markers.
	ErrNoContent = errors.New("no question containers found")

	errMissingQuestion = errors.New("question text missing")
	errMissingOptions  = errors.New("no options found")
)

// IndiabixScanner extracts current-affairs questions from indiabix day pages.
type IndiabixScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*IndiabixScanner)(nil)

// NewIndiabixScanner wires an HTTP client; a nil client gets a 20s timeout default.
// TLS certificates are verified.
func NewIndiabixScanner(client *http.Client, log *slog.Logger) *IndiabixScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &IndiabixScanner{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (s *IndiabixScanner) Name() string {
	return "indiabix"
}

// Scan downloads the candidate page and parses every question container on it.
// Containers that cannot be parsed are dropped individually.
func (s *IndiabixScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.QuestionRecord, error) {
	doc, err := s.fetchDocument(ctx, req.Candidate.URL)
	if err != nil {
		return nil, err
	}
	return s.extractQuestions(doc, req.Candidate.URL)
}

func (s *IndiabixScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *IndiabixScanner) extractQuestions(doc *goquery.Document, pageURL string) ([]domain.QuestionRecord, error) {
	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		return nil, ErrNoContent
	}

	questions := make([]domain.QuestionRecord, 0, containers.Length())
	containers.Each(func(i int, container *goquery.Selection) {
		record, err := parseContainer(container)
		if err != nil {
			s.warn("drop malformed question", "url", pageURL, "index", i, "error", err)
			return
		}
		questions = append(questions, record)
	})

	return questions, nil
}

func parseContainer(container *goquery.Selection) (domain.QuestionRecord, error) {
	var record domain.QuestionRecord

	questionNode := container.Find(questionSelector).First()
	if questionNode.Length() == 0 {
		return record, errMissingQuestion
	}
	record.Question = cleanText(questionNode.Text())
	if record.Question == "" {
		return record, errMissingQuestion
	}

	container.Find(optionSelector).Each(func(i int, option *goquery.Selection) {
		record.Options = append(record.Options, domain.Option{
			Label: domain.OptionLabel(i),
			Text:  cleanText(option.Text()),
		})
	})
	if len(record.Options) == 0 {
		return record, errMissingOptions
	}

	if key, ok := container.Find(answerKeySelector).First().Attr("value"); ok {
		record.CorrectLabel = strings.ToUpper(strings.TrimSpace(key))
	}

	record.Explanation = defaultExplanation
	if explanation := container.Find(explanationSelector).First(); explanation.Length() > 0 {
		if text := cleanText(explanation.Text()); text != "" {
			record.Explanation = text
		}
	}

	return record, nil
}

// cleanText trims and collapses inner whitespace runs left by the page markup.
func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func (s *IndiabixScanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
