package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/infrastructure/fcm"
	"quizfeed/internal/infrastructure/parser"
	"quizfeed/internal/infrastructure/scheduler"
	"quizfeed/internal/infrastructure/storage"
	"quizfeed/internal/infrastructure/telegram"
	"quizfeed/internal/infrastructure/translate"
	"quizfeed/internal/metrics"
	"quizfeed/internal/ports"
	"quizfeed/internal/render"
	"quizfeed/internal/retry"
	"quizfeed/internal/scanner"
	"quizfeed/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pipeline *usecase.Pipeline
	store    *storage.MySQLContentStore
	redis    *redis.Client
}

// New connects the stores and builds the pipeline. Any connection or
// configuration failure is returned before a run can start.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	redisClient, err := storage.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect dedup store: %w", err)
	}

	store, err := storage.OpenMySQLContentStore(ctx,
		storage.MySQLOpener(cfg.MySQL),
		storage.Classification{
			CategoryID:  cfg.Content.CategoryID,
			Status:      cfg.Content.Status,
			ContentType: cfg.Content.ContentType,
		},
		logger.With("component", "storage.mysql"),
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect content store: %w", err)
	}

	app := &Application{cfg: cfg, logger: logger, metrics: metrics.New(), store: store, redis: redisClient}

	app.pipeline, err = app.buildPipeline(ctx, storage.NewRedisDedupStore(redisClient, cfg.Redis.KeyPrefix), store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *Application) buildPipeline(ctx context.Context, dedup ports.DedupStore, store ports.ContentStore) (*usecase.Pipeline, error) {
	cfg := a.cfg

	registry := scanner.NewRegistry()
	registry.Register(parser.NewIndiabixScanner(
		&http.Client{Timeout: cfg.Source.Timeout},
		a.logger.With("component", "scanner.indiabix"),
	))
	source := parser.NewStrategySource(registry, cfg.Source, a.logger.With("component", "source"))

	backend, err := newTranslatorBackend(ctx, cfg.Translation)
	if err != nil {
		return nil, err
	}
	translator := usecase.NewFallbackTranslator(usecase.TranslatorDeps{
		Backend:        backend,
		Policy:         retry.Policy{MaxAttempts: cfg.Translation.MaxAttempts, Delay: cfg.Translation.RetryDelay},
		TargetLanguage: cfg.Translation.TargetLanguage,
		Pacing:         cfg.Translation.Pacing,
		Logger:         a.logger.With("component", "translator", "backend", cfg.Translation.Backend),
		OnFallback:     a.metrics.TranslationFallbacks.Inc,
	})

	labels := render.LabelsFromConfig(cfg.Content.Labels)
	hooks, err := newHooks(ctx, cfg, labels)
	if err != nil {
		return nil, err
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Extractor:         source,
		Dedup:             dedup,
		Store:             store,
		Translator:        translator,
		Renderer:          render.NewRenderer(labels, cfg.Content.TitleSuffix),
		Hooks:             hooks,
		Metrics:           a.metrics,
		Logger:            a.logger,
		URLTemplate:       cfg.Source.URLTemplate,
		Workers:           cfg.Pipeline.Workers,
		IdentifierTimeout: cfg.Pipeline.IdentifierTimeout,
	}), nil
}

func newTranslatorBackend(ctx context.Context, cfg config.TranslationConfig) (ports.TextTranslator, error) {
	switch cfg.Backend {
	case config.BackendGoogle:
		t, err := translate.NewGoogleTranslator(ctx, cfg.Google.APIKey, cfg.Google.Endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("google translator: %w", err)
		}
		return t, nil
	case config.BackendChatGPT:
		return translate.NewChatGPTTranslator(cfg.ChatGPT, nil), nil
	case config.BackendNone:
		return translate.Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", cfg.Backend)
	}
}

func newHooks(ctx context.Context, cfg config.Config, labels render.Labels) ([]usecase.PostCommitHook, error) {
	var hooks []usecase.PostCommitHook

	if cfg.Telegram.Enabled {
		hooks = append(hooks, telegram.NewNotifier(cfg.Telegram, labels, nil))
	}

	if cfg.FCM.Enabled {
		credentials, err := fcm.LoadCredentials(cfg.FCM)
		if err != nil {
			return nil, fmt.Errorf("fcm credentials: %w", err)
		}
		notifier, err := fcm.NewNotifier(ctx, cfg.FCM, credentials, labels)
		if err != nil {
			return nil, fmt.Errorf("fcm notifier: %w", err)
		}
		hooks = append(hooks, notifier)
	}

	return hooks, nil
}

// Run performs a single pass for the month of reference.
func (a *Application) Run(ctx context.Context, reference time.Time) (domain.RunReport, error) {
	return a.pipeline.Run(ctx, reference.In(a.cfg.Scheduler.Location()))
}

// Schedule runs the pipeline on the configured cron expression and serves
// /metrics until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	if err := scheduler.Validate(a.cfg.Scheduler.CronExpression); err != nil {
		return err
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), a.logger)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger)
	sched.OnReport(a.observeReport)

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if err := sched.Start(ctx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Timezone,
		"metrics", a.cfg.Metrics.Address,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("metrics server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("metrics server shutdown", "error", err)
	}
	return runErr
}

// observeReport publishes a scheduled run's result, since no exit code reports it.
func (a *Application) observeReport(report domain.RunReport) {
	a.metrics.ObserveReport(report)
	if report.Failed() {
		a.logger.Warn("scheduled run left identifiers for the next run",
			"aborted", report.Aborted,
			"mark_failed", report.MarkFailed,
		)
	}
}

// Close releases store connections.
func (a *Application) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
