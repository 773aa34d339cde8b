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

// BatchOptions sizes the LLM stages.
type BatchOptions struct {
	Size        int
	Concurrency int
}

// Scorer rates articles on relevance, quality and timeliness.
type Scorer struct {
	chat    ports.ChatClient
	opts    BatchOptions
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewScorer builds the scoring stage.
func NewScorer(chat ports.ChatClient, opts BatchOptions, logger *slog.Logger, rec *metrics.Recorder) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{chat: chat, opts: opts, logger: logger, metrics: rec}
}

// Score returns one result per article, aligned with the input order.
func (s *Scorer) Score(ctx context.Context, articles []domain.Article) []domain.ScoreResult {
	results := batch.Run(ctx, batch.Job[domain.Article, domain.ScoreResult]{
		Name:        "score",
		BatchSize:   s.opts.Size,
		Concurrency: s.opts.Concurrency,
		Process:     s.process,
		Fallback: func(batch.Item[domain.Article]) domain.ScoreResult {
			return domain.NeutralScore()
		},
		OnBatch: func(ok bool) { s.metrics.Batch("score", ok) },
		Logger:  s.logger,
	}, batch.Index(articles))

	out := make([]domain.ScoreResult, len(articles))
	for i := range out {
		out[i] = results[i]
	}
	return out
}

func (s *Scorer) process(ctx context.Context, b batch.Batch[domain.Article]) (map[int]domain.ScoreResult, error) {
	prompt := buildScoringPrompt(b)
	s.logger.Debug("scoring prompt", "batch", b.Number, "prompt", prompt)

	reply, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("score batch %d: %w", b.Number, err)
	}
	s.logger.Debug("scoring reply", "batch", b.Number, "reply", parser.Truncate(reply, 500))

	parsed, err := llm.ParseStructured[rawResults](reply)
	if err != nil {
		return nil, fmt.Errorf("score batch %d: %w", b.Number, err)
	}

	out := make(map[int]domain.ScoreResult, len(parsed.Results))
	for _, entry := range parsed.Results {
		idx, ok := resultIndex(entry)
		if !ok {
			continue
		}
		out[idx] = domain.ScoreResult{
			Relevance:  clampScore(entry["relevance"]),
			Quality:    clampScore(entry["quality"]),
			Timeliness: clampScore(entry["timeliness"]),
			Category:   domain.ParseCategory(text(entry["category"])),
			Keywords:   keywords(entry["keywords"]),
		}
	}
	return out, nil
}
