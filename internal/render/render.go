// Package render turns translated question records into a publishable HTML article.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
)

// DateLayout formats the human-readable date shown in titles and headers.
const DateLayout = "02 January 2006"

//go:embed templates/article.html.tmpl
var templatesFS embed.FS

var articleTemplate = template.Must(
	template.New("article.html.tmpl").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templatesFS, "templates/article.html.tmpl"),
)

// Labels are the captions used in the article and notifications.
type Labels struct {
	Heading     string
	Total       string
	Question    string
	Answer      string
	Explanation string
	Footer      string
}

// DefaultLabels returns the Gujarati captions.
func DefaultLabels() Labels {
	return Labels{
		Heading:     "ગુજરાતી કરંટ અફેર્સ",
		Total:       "કુલ પ્રશ્નો",
		Question:    "પ્રશ્ન",
		Answer:      "સાચો જવાબ",
		Explanation: "સમજૂતી",
		Footer:      "આભાર! આશા રાખીએ છીએ કે આ પ્રશ્નો તમારા જ્ઞાનમાં વધારો કરશે! 🌟",
	}
}

// LabelsFromConfig overlays configured captions onto the defaults.
func LabelsFromConfig(cfg config.LabelsConfig) Labels {
	l := DefaultLabels()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&l.Heading, cfg.Heading)
	override(&l.Total, cfg.Total)
	override(&l.Question, cfg.Question)
	override(&l.Answer, cfg.Answer)
	override(&l.Explanation, cfg.Explanation)
	override(&l.Footer, cfg.Footer)
	return l
}

// Renderer is a pure transform from translated records to an HTML body.
type Renderer struct {
	labels      Labels
	titleSuffix string
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer builds a renderer with the given captions and article title suffix.
func NewRenderer(labels Labels, titleSuffix string) *Renderer {
	return &Renderer{labels: labels, titleSuffix: titleSuffix}
}

// Render builds the article body.
func (r *Renderer) Render(records []domain.TranslatedQuestionRecord, dateLabel string) (string, error) {
	var buf bytes.Buffer
	err := articleTemplate.Execute(&buf, struct {
		DateLabel string
		Labels    Labels
		Records   []domain.TranslatedQuestionRecord
	}{
		DateLabel: dateLabel,
		Labels:    r.labels,
		Records:   records,
	})
	if err != nil {
		return "", fmt.Errorf("execute article template: %w", err)
	}
	return buf.String(), nil
}

// Document assembles the full RenderedDocument for a day.
func (r *Renderer) Document(records []domain.TranslatedQuestionRecord, date time.Time) (domain.RenderedDocument, error) {
	label := date.Format(DateLayout)
	body, err := r.Render(records, label)
	if err != nil {
		return domain.RenderedDocument{}, err
	}

	title := label
	if r.titleSuffix != "" {
		title = label + " " + r.titleSuffix
	}

	return domain.RenderedDocument{
		Title:          title,
		Date:           date,
		DateLabel:      label,
		Body:           body,
		ImageReference: label + ".png",
	}, nil
}
