// Package feeds downloads RSS/Atom feeds concurrently and turns their items
// into articles.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"DailyDigest/internal/batch"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/metrics"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/scanner"
)

const (
	defaultUserAgent = "DailyDigest/1.0 (RSS Reader)"
	acceptHeader     = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
	maxBodyBytes     = 10 << 20
)

// Options tune the fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout         time.Duration
	Concurrency     int
	UserAgent       string
	PerHostInterval time.Duration
}

// Fetcher implements ports.ArticleSource over HTTP.
type Fetcher struct {
	parser  scanner.Parser
	client  *http.Client
	opts    Options
	limiter *HostRateLimiter
	logger  *slog.Logger
	metrics *metrics.Recorder
}

var _ ports.ArticleSource = (*Fetcher)(nil)

// NewFetcher wires a feed parser strategy with HTTP settings.
func NewFetcher(p scanner.Parser, opts Options, logger *slog.Logger, rec *metrics.Recorder) *Fetcher {
	if p == nil {
		p = parser.NewPatternParser()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fetcher{
		parser:  p,
		client:  &http.Client{},
		opts:    opts,
		logger:  logger,
		metrics: rec,
	}
	if opts.PerHostInterval > 0 {
		f.limiter = NewHostRateLimiter(opts.PerHostInterval)
	}
	return f
}

type outcome struct {
	articles []domain.Article
	err      error
}

// FetchAll fetches every source with bounded concurrency. A failing source
// contributes nothing and never aborts the others. Articles keep source order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []domain.FeedSource) ([]domain.Article, domain.FetchStats) {
	results := make([]outcome, len(sources))

	batch.Limit(ctx, len(sources), f.opts.Concurrency, func(ctx context.Context, i int) {
		articles, err := f.fetchOne(ctx, sources[i])
		results[i] = outcome{articles: articles, err: err}
	})

	stats := domain.FetchStats{Total: len(sources)}
	var all []domain.Article
	for i, res := range results {
		src := sources[i]
		switch {
		case res.err != nil:
			stats.Failed++
			if errors.Is(res.err, context.DeadlineExceeded) {
				f.metrics.FeedFetch("timeout")
				f.logger.Warn("feed fetch timeout", "source", src.Name, "url", src.XMLURL)
			} else {
				f.metrics.FeedFetch("error")
				f.logger.Warn("feed fetch failed", "source", src.Name, "url", src.XMLURL, "error", res.err)
			}
		case len(res.articles) == 0:
			stats.Succeeded++
			stats.Empty++
			f.metrics.FeedFetch("empty")
		default:
			stats.Succeeded++
			f.metrics.FeedFetch("ok")
		}
		all = append(all, res.articles...)
	}
	stats.Articles = len(all)

	f.logger.Info("feeds fetched",
		"sources", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"empty", stats.Empty,
		"articles", stats.Articles)

	return all, stats
}

func (f *Fetcher) fetchOne(ctx context.Context, src domain.FeedSource) ([]domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.WaitForHost(ctx, src.XMLURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := f.download(ctx, src.XMLURL)
	if err != nil {
		return nil, err
	}

	items, err := f.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, toArticle(item, src))
	}
	f.logger.Debug("feed parsed", "source", src.Name, "items", len(articles))
	return articles, nil
}

func (f *Fetcher) download(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read feed: %w", err)
	}
	return string(raw), nil
}

func toArticle(item scanner.Item, src domain.FeedSource) domain.Article {
	pub, ok := parser.ParseDate(item.PubDate)
	if !ok {
		pub = time.Unix(0, 0).UTC()
	}
	return domain.Article{
		Title:       item.Title,
		Link:        item.Link,
		PubDate:     pub,
		Description: item.Description,
		SourceName:  src.Name,
		SourceURL:   src.HTMLURL,
	}
}
