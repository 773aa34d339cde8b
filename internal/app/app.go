package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"DailyDigest/internal/config"
	"DailyDigest/internal/infrastructure/feeds"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/infrastructure/report"
	"DailyDigest/internal/infrastructure/scheduler"
	"DailyDigest/internal/infrastructure/storage"
	"DailyDigest/internal/infrastructure/telegram"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/metrics"
	"DailyDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	renderer *report.Renderer
	cache    *storage.SQLiteCache
	metrics  *metrics.Recorder
}

// New builds a runnable application instance. The feed cache is opened only
// when withCache is set.
func New(cfg config.Config, baseLogger *slog.Logger, withCache bool) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := parser.NewRegistry()
	feedParser, err := registry.Resolve(cfg.Feeds.Parser)
	if err != nil {
		return nil, fmt.Errorf("feeds.parser: %w", err)
	}

	rec := metrics.New()

	source := feeds.NewFetcher(feedParser, feeds.Options{
		Timeout:         cfg.Feeds.Timeout(),
		Concurrency:     cfg.Feeds.Concurrency,
		UserAgent:       cfg.Feeds.UserAgent,
		PerHostInterval: cfg.Feeds.PerHostInterval,
	}, baseLogger.With("component", "feeds"), rec)

	chat := llm.NewClient(cfg.LLM, baseLogger.With("component", "llm"), rec)
	batchOpts := usecase.BatchOptions{Size: cfg.Digest.BatchSize, Concurrency: cfg.Digest.MaxConcurrent}

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		renderer: report.NewRenderer(cfg.Report.Format),
		metrics:  rec,
	}

	deps := usecase.PipelineDeps{
		Source:     source,
		Scorer:     usecase.NewScorer(chat, batchOpts, baseLogger.With("component", "scorer"), rec),
		Summarizer: usecase.NewSummarizer(chat, batchOpts, baseLogger.With("component", "summarizer"), rec),
		Highlights: usecase.NewHighlights(chat, cfg.Digest.Highlights, baseLogger.With("component", "highlights")),
		Renderer:   a.renderer,
		Metrics:    rec,
		Logger:     baseLogger.With("component", "pipeline"),
	}

	if withCache {
		cache, err := storage.OpenSQLiteCache(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			baseLogger.Warn("feed cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			a.cache = cache
			deps.Cache = cache
		}
	}

	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		deps.Notifier = telegram.NewNotifier(tg.APIURL, tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(deps)
	return a, nil
}

// Close releases the cache handle.
func (a *Application) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// Metrics exposes the recorder for textfile export.
func (a *Application) Metrics() *metrics.Recorder {
	return a.metrics
}

// DefaultOutput is data/digest-YYYYMMDD with the renderer's extension.
func (a *Application) DefaultOutput(now time.Time) string {
	return filepath.Join("data", "digest-"+now.Format("20060102")+a.renderer.Extension())
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, opts usecase.RunOptions) (usecase.Result, error) {
	if opts.Sources == nil {
		opts.Sources = a.cfg.Feeds.Sources
	}
	if opts.UseCache && a.cache == nil {
		opts.UseCache = false
	}
	return a.pipeline.Run(ctx, opts)
}

// Schedule runs the digest now and then every interval until ctx ends.
func (a *Application) Schedule(ctx context.Context, every time.Duration, opts func(time.Time) usecase.RunOptions) error {
	withSources := func(t time.Time) usecase.RunOptions {
		o := opts(t)
		if o.Sources == nil {
			o.Sources = a.cfg.Feeds.Sources
		}
		if o.UseCache && a.cache == nil {
			o.UseCache = false
		}
		return o
	}

	driver := scheduler.NewTickerScheduler(every)
	sched := usecase.NewScheduler(driver, a.pipeline, withSources, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "every", every)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// ClearCache removes every cached feed snapshot.
func (a *Application) ClearCache(ctx context.Context) error {
	if a.cache == nil {
		return fmt.Errorf("feed cache is not open")
	}
	return a.cache.Clear(ctx)
}
