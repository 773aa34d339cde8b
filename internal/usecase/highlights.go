package usecase

import (
	"context"
	"log/slog"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const highlightsCount = 10

// Highlights asks for a short prose overview of the top articles.
type Highlights struct {
	chat   ports.ChatClient
	count  int
	logger *slog.Logger
}

// NewHighlights builds the overview stage; count <= 0 means 10.
func NewHighlights(chat ports.ChatClient, count int, logger *slog.Logger) *Highlights {
	if count <= 0 {
		count = highlightsCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Highlights{chat: chat, count: count, logger: logger}
}

// Generate never fails: any error yields an empty string.
func (h *Highlights) Generate(ctx context.Context, articles []domain.ScoredArticle, lang string) string {
	if len(articles) == 0 {
		return ""
	}
	top := articles[:min(h.count, len(articles))]

	reply, err := h.chat.Complete(ctx, buildHighlightsPrompt(top, lang))
	if err != nil {
		h.logger.Warn("highlights generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(reply)
}
