package domain

// ProcessingState enumerates pipeline milestones for one candidate.
type ProcessingState string

const (
	StateCandidate  ProcessingState = "candidate"
	StateExtracted  ProcessingState = "extracted"
	StateTranslated ProcessingState = "translated"
	StateRendered   ProcessingState = "rendered"
	StatePersisted  ProcessingState = "persisted"
	StateMarked     ProcessingState = "marked"

	// Terminal states.
	StateSkipped  ProcessingState = "skipped"
	StateAborted  ProcessingState = "aborted"
	StateNotified ProcessingState = "notified"
)

// HookResult is the outcome of a single post-commit hook.
type HookResult struct {
	Name string
	Err  error
}

// Outcome describes how one candidate finished.
type Outcome struct {
	Candidate Candidate
	State     ProcessingState
	ArticleID int64
	Questions int
	// MarkErr is set when the article was persisted but the marker write failed.
	MarkErr error
	Err     error
	Hooks   []HookResult
}

// RunReport aggregates the outcomes of one pipeline run.
type RunReport struct {
	Generated  int
	Pending    int
	Skipped    int
	Aborted    int
	Persisted  int
	MarkFailed int
	Outcomes   []Outcome
}

// Add folds a single outcome into the report.
func (r *RunReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.State {
	case StateSkipped:
		r.Skipped++
	case StateAborted:
		r.Aborted++
	case StateNotified:
		r.Persisted++
		if o.MarkErr != nil {
			r.MarkFailed++
		}
	}
}

// Failed reports whether any candidate was aborted or left unmarked after persistence.
func (r RunReport) Failed() bool {
	return r.Aborted > 0 || r.MarkFailed > 0
}
