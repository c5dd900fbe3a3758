// Package candidate enumerates the per-day source identifiers for a month.
package candidate

import (
	"strings"
	"time"

	"quizfeed/internal/domain"
)

const (
	// DatePlaceholder is substituted with the ISO date in URL templates.
	DatePlaceholder = "{date}"
	isoLayout       = "2006-01-02"
)

// Generate returns one candidate per day from the first of reference's month
// through reference itself, in ascending order.
func Generate(reference time.Time, template string) []domain.Candidate {
	y, m, d := reference.Date()
	loc := reference.Location()

	out := make([]domain.Candidate, 0, d)
	for day := 1; day <= d; day++ {
		date := time.Date(y, m, day, 0, 0, 0, 0, loc)
		out = append(out, domain.Candidate{
			Date: date,
			URL:  BuildURL(template, date),
		})
	}
	return out
}

// BuildURL fills the template with the ISO representation of date.
func BuildURL(template string, date time.Time) string {
	return strings.ReplaceAll(template, DatePlaceholder, date.Format(isoLayout))
}
