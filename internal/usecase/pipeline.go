package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/metrics"
	"DailyDigest/internal/ports"
)

var (
	// ErrNoArticles means no feed produced a single article.
	ErrNoArticles = errors.New("no articles fetched from any feed, check network connection")
	// ErrNoRecentArticles means nothing fell inside the time window.
	ErrNoRecentArticles = errors.New("no articles inside the time window, try increasing --hours (e.g. --hours 168)")
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Cache      ports.FeedCache
	Scorer     *Scorer
	Summarizer *Summarizer
	Highlights *Highlights
	Renderer   ports.Renderer
	Notifier   ports.Notifier
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// RunOptions are the per-run knobs exposed on the command line.
type RunOptions struct {
	Sources  []domain.FeedSource
	Hours    int
	TopN     int
	Lang     string
	Output   string
	TestMode bool
	UseCache bool
}

// Result describes a finished run.
type Result struct {
	Digest     domain.Digest
	Fetch      domain.FetchStats
	OutputPath string
}

// Pipeline implements the digest workflow.
type Pipeline struct {
	source     ports.ArticleSource
	cache      ports.FeedCache
	scorer     *Scorer
	summarizer *Summarizer
	highlights *Highlights
	renderer   ports.Renderer
	notifier   ports.Notifier
	metrics    *metrics.Recorder
	logger     *slog.Logger
	clock      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		cache:      deps.Cache,
		scorer:     deps.Scorer,
		summarizer: deps.Summarizer,
		highlights: deps.Highlights,
		renderer:   deps.Renderer,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		clock:      deps.Clock,
	}
}

// Run fetches, filters, scores, summarizes and renders one digest.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Result, error) {
	started := p.clock()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	if p.source == nil || p.scorer == nil || p.summarizer == nil {
		return Result{}, fmt.Errorf("pipeline misconfigured: source, scorer and summarizer are required")
	}

	sources := opts.Sources
	if opts.TestMode && len(sources) > 0 {
		sources = sources[:1]
		logger.Warn("test mode: fetching a single feed", "source", sources[0].Name)
	}

	logger.Info("digest run started",
		"feeds", len(sources),
		"hours", opts.Hours,
		"top_n", opts.TopN,
		"lang", opts.Lang)

	all, fetch := p.fetch(ctx, logger, sources, opts.UseCache)
	p.metrics.Articles("fetched", len(all))
	if len(all) == 0 {
		return Result{Fetch: fetch}, ErrNoArticles
	}

	now := p.clock()
	recent := FilterRecent(all, now, opts.Hours)
	p.metrics.Articles("recent", len(recent))
	logger.Info("articles filtered", "window_hours", opts.Hours, "recent", len(recent), "total", len(all))
	if len(recent) == 0 {
		return Result{Fetch: fetch}, ErrNoRecentArticles
	}

	scores := p.scorer.Score(ctx, recent)
	top := SelectTop(recent, scores, opts.TopN)
	p.metrics.Articles("selected", len(top))
	if len(top) > 0 {
		logger.Info("top articles selected",
			"count", len(top),
			"max_score", top[0].Score(),
			"min_score", top[len(top)-1].Score())
	}

	plain := make([]domain.Article, len(top))
	for i := range top {
		plain[i] = top[i].Article
	}
	summaries := p.summarizer.Summarize(ctx, plain, opts.Lang)
	for i := range top {
		top[i].SummaryResult = summaries[i]
	}

	var highlights string
	if p.highlights != nil {
		highlights = p.highlights.Generate(ctx, top, opts.Lang)
	}

	digest := domain.Digest{
		RunID:      runID,
		Articles:   top,
		Highlights: highlights,
		Stats: domain.RunStats{
			TotalFeeds:       len(opts.Sources),
			SuccessFeeds:     distinctSources(all),
			TotalArticles:    len(all),
			FilteredArticles: len(recent),
			Hours:            opts.Hours,
			Lang:             opts.Lang,
		},
		Generated: now,
	}

	result := Result{Digest: digest, Fetch: fetch}

	if p.renderer != nil && opts.Output != "" {
		if err := p.write(digest, opts.Output); err != nil {
			return result, err
		}
		result.OutputPath = opts.Output
		logger.Info("report written", "path", opts.Output)
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, NotificationText(digest)); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}

	p.metrics.RunFinished(p.clock(), p.clock().Sub(started))
	logger.Info("digest run finished",
		"sources", digest.Stats.SuccessFeeds,
		"articles", digest.Stats.TotalArticles,
		"recent", digest.Stats.FilteredArticles,
		"selected", len(top))

	return result, nil
}

func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger, sources []domain.FeedSource, useCache bool) ([]domain.Article, domain.FetchStats) {
	if useCache && p.cache != nil {
		cached, ok, err := p.cache.Read(ctx)
		switch {
		case err != nil:
			logger.Warn("feed cache read failed", "error", err)
		case ok:
			logger.Info("using cached articles", "articles", len(cached))
			return cached, domain.FetchStats{Total: len(sources), Articles: len(cached)}
		}
	}

	all, stats := p.source.FetchAll(ctx, sources)

	if useCache && p.cache != nil && len(all) > 0 {
		if err := p.cache.Write(ctx, all, len(sources)); err != nil {
			logger.Warn("feed cache write failed", "error", err)
		}
	}
	return all, stats
}

func (p *Pipeline) write(digest domain.Digest, path string) error {
	body, err := p.renderer.Render(digest)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// FilterRecent keeps articles published strictly after now-hours.
func FilterRecent(articles []domain.Article, now time.Time, hours int) []domain.Article {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	recent := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.PubDate.After(cutoff) {
			recent = append(recent, a)
		}
	}
	return recent
}

// SelectTop pairs articles with their scores, sorts by total descending
// (ties keep input order) and keeps the first topN.
func SelectTop(articles []domain.Article, scores []domain.ScoreResult, topN int) []domain.ScoredArticle {
	scored := make([]domain.ScoredArticle, len(articles))
	for i, a := range articles {
		score := domain.NeutralScore()
		if i < len(scores) {
			score = scores[i]
		}
		scored[i] = domain.ScoredArticle{Article: a, ScoreResult: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})

	if topN >= 0 && topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}

func distinctSources(articles []domain.Article) int {
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		seen[a.SourceName] = struct{}{}
	}
	return len(seen)
}

// NotificationText is a compact headline plus the top three links.
func NotificationText(d domain.Digest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily Digest %s\n", d.Generated.Format("2006-01-02"))
	fmt.Fprintf(&sb, "%d sources, %d articles, top %d selected\n\n",
		d.Stats.SuccessFeeds, d.Stats.FilteredArticles, len(d.Articles))
	if d.Highlights != "" {
		sb.WriteString(d.Highlights)
		sb.WriteString("\n\n")
	}
	for i, a := range d.Articles {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%d/30)\n%s\n%s\n\n",
			i+1, a.DisplayTitle(), a.Score(), parser.Truncate(a.Summary, 120), a.Link)
	}
	return strings.TrimSpace(sb.String())
}
