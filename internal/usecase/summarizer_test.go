package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/logging"
)

func TestSummarizerMapsResultsAndFallsBack(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: func(prompt string) (string, error) {
		return `Here: {"results":[{"index":0,"titleZh":"标题","summary":"S0","reason":"R0"},{"index":1,"summary":42}]}`, nil
	}}
	in := articles(3)
	in[2].Description = ""

	s := NewSummarizer(chat, BatchOptions{Size: 10, Concurrency: 2}, logging.Discard(), nil)
	got := s.Summarize(context.Background(), in, "zh")

	require.Len(t, got, 3)
	assert.Equal(t, domain.SummaryResult{TitleZh: "标题", Summary: "S0", Reason: "R0"}, got[0])
	assert.Equal(t, domain.SummaryResult{}, got[1], "non-string fields become empty")
	assert.Equal(t, domain.SummaryResult{TitleZh: "title 2", Summary: "title 2"}, got[2])

	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "URL: https://example.com/0\n"+strings.Repeat("d", 800))
	assert.NotContains(t, prompt, strings.Repeat("d", 801))
	assert.Contains(t, prompt, "Chinese")
}

func TestSummarizerFailedBatch(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: func(string) (string, error) { return "", errors.New("boom") }}
	s := NewSummarizer(chat, BatchOptions{Size: 1, Concurrency: 2}, logging.Discard(), nil)
	got := s.Summarize(context.Background(), articles(2), "en")

	require.Len(t, got, 2)
	assert.Equal(t, "title 1", got[1].TitleZh)
	assert.Equal(t, strings.Repeat("d", 200), got[1].Summary)
	assert.Empty(t, got[1].Reason)
	assert.Contains(t, chat.prompts[0], "in English")
}

func TestHighlights(t *testing.T) {
	t.Parallel()

	top := make([]domain.ScoredArticle, 12)
	for i := range top {
		top[i] = domain.ScoredArticle{
			Article:       domain.Article{Title: "t"},
			ScoreResult:   domain.ScoreResult{Category: domain.CategoryTools},
			SummaryResult: domain.SummaryResult{TitleZh: "译", Summary: strings.Repeat("s", 150)},
		}
	}

	chat := &fakeChat{reply: func(string) (string, error) { return "  trends of the day \n", nil }}
	h := NewHighlights(chat, 0, logging.Discard())
	assert.Equal(t, "trends of the day", h.Generate(context.Background(), top, "en"))

	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "10. [tools] 译 — "+strings.Repeat("s", 100)+"\n")
	assert.NotContains(t, prompt, "11. [")
	assert.NotContains(t, prompt, strings.Repeat("s", 101))

	failing := NewHighlights(&fakeChat{reply: func(string) (string, error) { return "", errors.New("down") }}, 10, logging.Discard())
	assert.Equal(t, "", failing.Generate(context.Background(), top, "zh"))
	assert.Equal(t, "", h.Generate(context.Background(), nil, "zh"))
}
