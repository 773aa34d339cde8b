package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"DailyDigest/internal/batch"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/metrics"
	"DailyDigest/internal/ports"
)

const fallbackSummaryLimit = 200

// Summarizer translates titles and writes summaries and reasons.
type Summarizer struct {
	chat    ports.ChatClient
	opts    BatchOptions
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewSummarizer builds the summarization stage.
func NewSummarizer(chat ports.ChatClient, opts BatchOptions, logger *slog.Logger, rec *metrics.Recorder) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{chat: chat, opts: opts, logger: logger, metrics: rec}
}

// Summarize returns one result per article, aligned with the input order.
func (s *Summarizer) Summarize(ctx context.Context, articles []domain.Article, lang string) []domain.SummaryResult {
	results := batch.Run(ctx, batch.Job[domain.Article, domain.SummaryResult]{
		Name:        "summarize",
		BatchSize:   s.opts.Size,
		Concurrency: s.opts.Concurrency,
		Process: func(ctx context.Context, b batch.Batch[domain.Article]) (map[int]domain.SummaryResult, error) {
			return s.process(ctx, b, lang)
		},
		Fallback: func(item batch.Item[domain.Article]) domain.SummaryResult {
			return fallbackSummary(item.Value)
		},
		OnBatch: func(ok bool) { s.metrics.Batch("summarize", ok) },
		Logger:  s.logger,
	}, batch.Index(articles))

	out := make([]domain.SummaryResult, len(articles))
	for i := range out {
		out[i] = results[i]
	}
	return out
}

func (s *Summarizer) process(ctx context.Context, b batch.Batch[domain.Article], lang string) (map[int]domain.SummaryResult, error) {
	prompt := buildSummaryPrompt(b, lang)
	s.logger.Debug("summary prompt", "batch", b.Number, "prompt", prompt)

	reply, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("summarize batch %d: %w", b.Number, err)
	}
	s.logger.Debug("summary reply", "batch", b.Number, "reply", parser.Truncate(reply, 500))

	parsed, err := llm.ParseStructured[rawResults](reply)
	if err != nil {
		return nil, fmt.Errorf("summarize batch %d: %w", b.Number, err)
	}

	out := make(map[int]domain.SummaryResult, len(parsed.Results))
	for _, entry := range parsed.Results {
		idx, ok := resultIndex(entry)
		if !ok {
			continue
		}
		out[idx] = domain.SummaryResult{
			TitleZh: text(entry["titleZh"]),
			Summary: text(entry["summary"]),
			Reason:  text(entry["reason"]),
		}
	}
	return out, nil
}

func fallbackSummary(a domain.Article) domain.SummaryResult {
	summary := parser.Truncate(a.Description, fallbackSummaryLimit)
	if summary == "" {
		summary = a.Title
	}
	return domain.SummaryResult{TitleZh: a.Title, Summary: summary}
}
