package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"quizfeed/internal/domain"
)

const testTemplate = "https://quiz.example/{date}/"

type fakeExtractor struct {
	mu      sync.Mutex
	pages   map[string][]domain.QuestionRecord
	errs    map[string]error
	calls   []string
	delay   time.Duration
	active  int
	maxSeen int
}

func (f *fakeExtractor) Extract(ctx context.Context, cand domain.Candidate) ([]domain.QuestionRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cand.URL)
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	if err := f.errs[cand.URL]; err != nil {
		return nil, err
	}
	return f.pages[cand.URL], nil
}

type fakeDedup struct {
	mu          sync.Mutex
	seen        map[string]bool
	lookupErr   map[string]error
	markErr     error
	marked      []string
	events      *eventLog
	containsHit int
}

func newFakeDedup(seen ...string) *fakeDedup {
	d := &fakeDedup{seen: map[string]bool{}, lookupErr: map[string]error{}}
	for _, id := range seen {
		d.seen[id] = true
	}
	return d
}

func (d *fakeDedup) Contains(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.containsHit++
	if err := d.lookupErr[id]; err != nil {
		return false, err
	}
	return d.seen[id], nil
}

func (d *fakeDedup) MarkProcessed(ctx context.Context, marker domain.ProcessedMarker) error {
	d.events.add("mark:" + marker.Identifier)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.markErr != nil {
		return d.markErr
	}
	d.seen[marker.Identifier] = true
	d.marked = append(d.marked, marker.Identifier)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	failFor map[string]bool
	docs    []domain.RenderedDocument
	events  *eventLog
}

var errStoreDown = errors.New("store unavailable")

func (s *fakeStore) Persist(_ context.Context, doc domain.RenderedDocument) (domain.PersistedArticle, error) {
	s.events.add("persist:" + doc.DateLabel)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[doc.DateLabel] {
		return domain.PersistedArticle{}, errStoreDown
	}
	s.nextID++
	s.docs = append(s.docs, doc)
	return domain.PersistedArticle{RenderedDocument: doc, ID: s.nextID}, nil
}

type fakeHook struct {
	name   string
	err    error
	panics bool
	mu     sync.Mutex
	pubs   []domain.Publication
	events *eventLog
}

func (h *fakeHook) Name() string { return h.name }

func (h *fakeHook) Run(_ context.Context, pub domain.Publication) error {
	h.events.add("hook:" + h.name)
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pubs = append(h.pubs, pub)
	return h.err
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// scriptedTranslator fails for texts listed in fail and upper-cases the rest.
type scriptedTranslator struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
}

func (s *scriptedTranslator) Translate(_ context.Context, text, target string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[text]++
	if s.fail[text] {
		return "", errors.New("backend unavailable")
	}
	return "[" + target + "]" + text, nil
}

func record(question string, correct string, options ...string) domain.QuestionRecord {
	rec := domain.QuestionRecord{Question: question, CorrectLabel: correct, Explanation: "because " + question}
	for i, text := range options {
		rec.Options = append(rec.Options, domain.Option{Label: domain.OptionLabel(i), Text: text})
	}
	return rec
}

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 9, 0, 0, 0, time.UTC)
}

func urlFor(d int) string {
	return "https://quiz.example/" + day(d).Format(time.DateOnly) + "/"
}
