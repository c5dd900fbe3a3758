package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
)

func translatedRecord(question string, options []string, correct string) domain.TranslatedQuestionRecord {
	rec := domain.TranslatedQuestionRecord{
		Question:     domain.TranslatedText{Text: question, Original: question, Translated: true},
		CorrectLabel: correct,
		Explanation:  domain.Untranslated("because"),
	}
	for i, text := range options {
		label := domain.OptionLabel(i)
		rec.Options = append(rec.Options, domain.TranslatedOption{Label: label, Text: domain.Untranslated(text)})
		if label == correct {
			rec.Resolved = true
			rec.CorrectAnswer = domain.Untranslated(text)
		}
	}
	if !rec.Resolved {
		rec.CorrectAnswer = domain.Untranslated(domain.UnresolvedAnswer)
	}
	return rec
}

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestRenderOptionIntegrity(t *testing.T) {
	t.Parallel()

	records := []domain.TranslatedQuestionRecord{
		translatedRecord("Q1", []string{"one", "two", "three", "four"}, "C"),
		translatedRecord("Q2", []string{"yes", "no"}, "Z"),
		// Duplicate option text must not produce two highlighted entries.
		translatedRecord("Q3", []string{"same", "same", "other"}, "B"),
	}

	body, err := NewRenderer(DefaultLabels(), "").Render(records, "02 June 2024")
	require.NoError(t, err)

	doc := parse(t, body)
	boxes := doc.Find("div.question-box")
	require.Equal(t, 3, boxes.Length())

	wantOptions := [][]string{{"A", "B", "C", "D"}, {"A", "B"}, {"A", "B", "C"}}
	wantCorrect := []string{"C", "", "B"}

	boxes.Each(func(i int, box *goquery.Selection) {
		var labels []string
		box.Find("div.option").Each(func(_ int, opt *goquery.Selection) {
			label, _ := opt.Attr("data-label")
			labels = append(labels, label)
		})
		assert.Equal(t, wantOptions[i], labels, "question %d option order", i)

		correct := box.Find("div.option.correct")
		if wantCorrect[i] == "" {
			assert.Equal(t, 0, correct.Length(), "question %d must have no correct option", i)
			return
		}
		require.Equal(t, 1, correct.Length(), "question %d must have exactly one correct option", i)
		label, _ := correct.Attr("data-label")
		assert.Equal(t, wantCorrect[i], label)
	})

	assert.Contains(t, doc.Find("div.answer-box").Eq(1).Text(), domain.UnresolvedAnswer)
}

func TestRenderHeaderAndEscaping(t *testing.T) {
	t.Parallel()

	records := []domain.TranslatedQuestionRecord{
		translatedRecord("<script>alert(1)</script>", []string{"a", "b"}, "A"),
		translatedRecord("second", []string{"a", "b"}, "B"),
	}

	body, err := NewRenderer(DefaultLabels(), "").Render(records, "02 June 2024")
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>alert(1)</script>")

	doc := parse(t, body)
	assert.Contains(t, doc.Find("div.qa-date").Text(), "02 June 2024")
	assert.Contains(t, doc.Find("div.title-header p").Text(), ": 2")
	assert.Equal(t, "<script>alert(1)</script>", doc.Find("div.question-text").First().Text())
	assert.Contains(t, doc.Find("div.question-header").Eq(1).Text(), "2")
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	records := []domain.TranslatedQuestionRecord{translatedRecord("Q", []string{"x", "y"}, "A")}
	r := NewRenderer(DefaultLabels(), "")

	first, err := r.Render(records, "01 June 2024")
	require.NoError(t, err)
	second, err := r.Render(records, "01 June 2024")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDocument(t *testing.T) {
	t.Parallel()

	labels := LabelsFromConfig(config.LabelsConfig{Heading: "Current Affairs"})
	r := NewRenderer(labels, "Gujarati Current Affairs")

	date := time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)
	doc, err := r.Document([]domain.TranslatedQuestionRecord{translatedRecord("Q", []string{"x"}, "A")}, date)
	require.NoError(t, err)

	assert.Equal(t, "02 June 2024 Gujarati Current Affairs", doc.Title)
	assert.Equal(t, "02 June 2024", doc.DateLabel)
	assert.Equal(t, "02 June 2024.png", doc.ImageReference)
	assert.Equal(t, date, doc.Date)
	assert.Contains(t, doc.Body, "Current Affairs")
}
