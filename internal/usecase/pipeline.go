package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"quizfeed/internal/candidate"
	"quizfeed/internal/domain"
	"quizfeed/internal/metrics"
	"quizfeed/internal/ports"
)

// sideEffectTimeout bounds marker writes and hooks, which outlive the run context.
const sideEffectTimeout = 30 * time.Second

// PostCommitHook runs after an article has been persisted.
type PostCommitHook = ports.PostCommitHook

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Extractor  ports.Extractor
	Dedup      ports.DedupStore
	Store      ports.ContentStore
	Translator *FallbackTranslator
	Renderer   ports.Renderer
	Hooks      []PostCommitHook
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	URLTemplate string
	// Workers bounds how many identifiers are processed at once.
	Workers int
	// IdentifierTimeout caps the work spent on one identifier; zero disables it.
	IdentifierTimeout time.Duration
	Now               func() time.Time
}

// Pipeline implements the discover, publish and notify workflow.
type Pipeline struct {
	extractor         ports.Extractor
	dedup             ports.DedupStore
	store             ports.ContentStore
	translator        *FallbackTranslator
	renderer          ports.Renderer
	hooks             []PostCommitHook
	metrics           *metrics.Metrics
	logger            *slog.Logger
	urlTemplate       string
	workers           int
	identifierTimeout time.Duration
	now               func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	translator := deps.Translator
	if translator == nil {
		translator = NewFallbackTranslator(TranslatorDeps{})
	}

	return &Pipeline{
		extractor:         deps.Extractor,
		dedup:             deps.Dedup,
		store:             deps.Store,
		translator:        translator,
		renderer:          deps.Renderer,
		hooks:             deps.Hooks,
		metrics:           deps.Metrics,
		logger:            logger.With("component", "pipeline"),
		urlTemplate:       deps.URLTemplate,
		workers:           workers,
		identifierTimeout: deps.IdentifierTimeout,
		now:               now,
	}
}

// Run processes every not yet published day from the first of reference's month
// through reference itself. Failures of individual identifiers are recorded in
// the report; the returned error is reserved for misconfiguration and cancellation.
func (p *Pipeline) Run(ctx context.Context, reference time.Time) (domain.RunReport, error) {
	var report domain.RunReport
	if p.extractor == nil || p.dedup == nil || p.store == nil || p.renderer == nil {
		return report, errors.New("pipeline is missing a required adapter")
	}

	candidates := candidate.Generate(reference, p.urlTemplate)
	report.Generated = len(candidates)

	pending := make([]domain.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		seen, err := p.dedup.Contains(ctx, cand.Key())
		if err != nil {
			// Without a reliable answer the candidate waits for the next run.
			p.logger.Warn("dedup lookup failed, skipping", "url", cand.URL, "error", err)
			report.Add(domain.Outcome{Candidate: cand, State: domain.StateSkipped, Err: err})
			p.countState(domain.StateSkipped)
			continue
		}
		if seen {
			continue
		}
		pending = append(pending, cand)
	}
	report.Pending = len(pending)
	p.addCandidates(len(pending))

	p.logger.Info("run started",
		"reference", reference.Format(time.DateOnly),
		"generated", report.Generated,
		"pending", report.Pending,
		"workers", p.workers,
	)

	outcomes := make([]domain.Outcome, len(pending))
	started := make([]bool, len(pending))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, cand := range pending {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			outcomes[i] = p.process(ctx, cand)
			return nil
		})
	}
	_ = g.Wait()

	for i, outcome := range outcomes {
		if started[i] {
			report.Add(outcome)
		}
	}

	if p.metrics != nil {
		p.metrics.Runs.Inc()
	}
	p.logger.Info("run finished",
		"generated", report.Generated,
		"pending", report.Pending,
		"persisted", report.Persisted,
		"skipped", report.Skipped,
		"aborted", report.Aborted,
		"mark_failed", report.MarkFailed,
	)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

// process drives one candidate to a terminal state. Nothing before the content
// store accepts the article leaves a trace, so an aborted candidate is retried
// on the next run.
func (p *Pipeline) process(ctx context.Context, cand domain.Candidate) domain.Outcome {
	log := p.logger.With("url", cand.URL)
	outcome := domain.Outcome{Candidate: cand, State: domain.StateCandidate}

	workCtx := ctx
	if p.identifierTimeout > 0 {
		var cancel context.CancelFunc
		workCtx, cancel = context.WithTimeout(ctx, p.identifierTimeout)
		defer cancel()
	}

	records, err := p.extractor.Extract(workCtx, cand)
	if err != nil || len(records) == 0 {
		outcome.State = domain.StateSkipped
		outcome.Err = err
		log.Info("no content, skipping", "error", err)
		p.countState(outcome.State)
		return outcome
	}
	outcome.State = domain.StateExtracted
	outcome.Questions = len(records)

	translated := p.translator.TranslateAll(workCtx, records)
	outcome.State = domain.StateTranslated

	doc, err := p.renderer.Document(translated, cand.Date)
	if err != nil {
		return p.abort(log, outcome, fmt.Errorf("render: %w", err))
	}
	outcome.State = domain.StateRendered

	article, err := p.store.Persist(workCtx, doc)
	if err != nil {
		return p.abort(log, outcome, fmt.Errorf("persist: %w", err))
	}
	outcome.State = domain.StatePersisted
	outcome.ArticleID = article.ID
	log = log.With("article_id", article.ID)
	log.Info("article persisted", "questions", len(records))

	// The article is committed; the marker and hooks must not be lost to a run deadline.
	sideCtx := context.WithoutCancel(ctx)

	if err := p.mark(sideCtx, cand); err != nil {
		outcome.MarkErr = err
		log.Error("marker write failed, identifier may be republished", "error", err)
		p.countState("mark_failed")
	} else {
		outcome.State = domain.StateMarked
	}

	pub := domain.Publication{Article: article, Candidate: cand, Questions: translated}
	outcome.Hooks = p.notify(sideCtx, log, pub)
	outcome.State = domain.StateNotified
	p.countState(outcome.State)

	return outcome
}

func (p *Pipeline) mark(ctx context.Context, cand domain.Candidate) error {
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	return p.dedup.MarkProcessed(ctx, domain.ProcessedMarker{
		Identifier:  cand.Key(),
		ProcessedAt: p.now(),
	})
}

// notify runs every hook once, isolating failures from each other.
func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, pub domain.Publication) []domain.HookResult {
	results := make([]domain.HookResult, 0, len(p.hooks))
	for _, hook := range p.hooks {
		err := runHook(ctx, hook, pub)
		results = append(results, domain.HookResult{Name: hook.Name(), Err: err})

		outcome := metrics.OutcomeSent
		if err != nil {
			outcome = metrics.OutcomeFailed
			log.Warn("notification failed", "hook", hook.Name(), "error", err)
		} else {
			log.Info("notification sent", "hook", hook.Name())
		}
		if p.metrics != nil {
			p.metrics.Notifications.WithLabelValues(hook.Name(), outcome).Inc()
		}
	}
	return results
}

func runHook(ctx context.Context, hook PostCommitHook, pub domain.Publication) (err error) {
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", hook.Name(), r)
		}
	}()
	return hook.Run(ctx, pub)
}

func (p *Pipeline) abort(log *slog.Logger, outcome domain.Outcome, err error) domain.Outcome {
	log.Error("identifier aborted", "state", outcome.State, "error", err)
	outcome.State = domain.StateAborted
	outcome.Err = err
	p.countState(outcome.State)
	return outcome
}

func (p *Pipeline) countState(state domain.ProcessingState) {
	if p.metrics != nil {
		p.metrics.Identifiers.WithLabelValues(string(state)).Inc()
	}
}

func (p *Pipeline) addCandidates(n int) {
	if p.metrics != nil {
		p.metrics.Candidates.Add(float64(n))
	}
}
